package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"securiguard/internal/domain/models"
	"securiguard/internal/infrastructure/cache"
	"securiguard/pkg/logger"
)

// ScanCoordinator serializes scans by target fingerprint. At most one scan
// runs per fingerprint at a time; callers arriving while one is in flight
// attach to it and receive the same result object. Terminal results stay in
// the in-memory table for the configured TTL, during which repeat requests
// are served without touching detectors or providers.
//
// Cancellation is advisory: a scan admitted to the pipeline runs to
// completion even if every caller has gone away, so its result can serve
// later requests for the same fingerprint.
type ScanCoordinator struct {
	extractor  *FeatureExtractor
	aggregator *Aggregator
	cache      *cache.RedisCache // optional write-through tier, may be nil
	ttl        time.Duration
	logger     *logger.Logger
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]*scanEntry

	started   uint64
	attached  uint64
	cacheHits uint64
}

// scanEntry is one fingerprint's slot in the coordinator table.
// result is nil while the scan is in flight and is written exactly once,
// under the coordinator lock, before done is closed.
type scanEntry struct {
	done      chan struct{}
	result    *models.ScanResult
	expiresAt time.Time
}

// ScanHandle lets a caller wait for a scan that may already be finished or
// may still be in flight
type ScanHandle struct {
	entry *scanEntry
}

// Done returns a channel closed when the scan reaches a terminal state
func (h *ScanHandle) Done() <-chan struct{} {
	return h.entry.done
}

// Wait blocks until the scan finishes or ctx is cancelled. Cancelling Wait
// abandons this caller only; the scan itself keeps running.
func (h *ScanHandle) Wait(ctx context.Context) (*models.ScanResult, error) {
	select {
	case <-h.entry.done:
		return h.entry.result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// NewScanCoordinator creates a new scan coordinator. redisCache may be nil,
// in which case results live only in process memory.
func NewScanCoordinator(extractor *FeatureExtractor, aggregator *Aggregator, redisCache *cache.RedisCache, ttl time.Duration, log *logger.Logger) *ScanCoordinator {
	return &ScanCoordinator{
		extractor:  extractor,
		aggregator: aggregator,
		cache:      redisCache,
		ttl:        ttl,
		logger:     log.WithComponent("scan-coordinator"),
		now:        time.Now,
		entries:    make(map[string]*scanEntry),
	}
}

// Scan admits a target for scanning and returns a handle to its result.
// If a terminal result for the fingerprint is still fresh, the handle is
// already resolved; if a scan is in flight, the caller attaches to it;
// otherwise a new scan starts.
func (c *ScanCoordinator) Scan(ctx context.Context, target models.ScanTarget) *ScanHandle {
	fingerprint := target.Fingerprint()

	c.mu.Lock()
	if entry, ok := c.entries[fingerprint]; ok {
		if entry.result == nil || c.now().Before(entry.expiresAt) {
			c.attached++
			c.mu.Unlock()
			return &ScanHandle{entry: entry}
		}
		delete(c.entries, fingerprint)
	}

	entry := &scanEntry{done: make(chan struct{})}
	c.entries[fingerprint] = entry
	c.started++
	c.mu.Unlock()

	// The scan outlives the admitting request on purpose
	go c.run(context.WithoutCancel(ctx), target, fingerprint, entry)

	return &ScanHandle{entry: entry}
}

// Lookup returns the fresh terminal result for a fingerprint, if any
func (c *ScanCoordinator) Lookup(fingerprint string) (*models.ScanResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[fingerprint]
	if !ok || entry.result == nil || !c.now().Before(entry.expiresAt) {
		return nil, false
	}
	return entry.result, true
}

// Invalidate drops the stored result for a fingerprint so the next scan
// re-runs the pipeline. A scan currently in flight is not interrupted; its
// result will still land and is dropped only by a later Invalidate.
func (c *ScanCoordinator) Invalidate(ctx context.Context, fingerprint string) bool {
	c.mu.Lock()
	entry, ok := c.entries[fingerprint]
	removed := ok && entry.result != nil
	if removed {
		delete(c.entries, fingerprint)
	}
	c.mu.Unlock()

	if c.cache != nil {
		if err := c.cache.InvalidateScanResult(ctx, fingerprint); err != nil {
			c.logger.Warn().Err(err).Str("fingerprint", fingerprint).Msg("Failed to invalidate cached result")
		}
	}

	if removed {
		c.logger.Info().Str("fingerprint", fingerprint).Msg("Scan result invalidated")
	}
	return removed
}

// Stats reports coordinator counters for the stats endpoint
func (c *ScanCoordinator) Stats() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()

	inFlight := 0
	stored := 0
	for _, entry := range c.entries {
		if entry.result == nil {
			inFlight++
		} else {
			stored++
		}
	}

	return map[string]any{
		"scans_started":    c.started,
		"scans_deduped":    c.attached,
		"cache_hits":       c.cacheHits,
		"in_flight":        inFlight,
		"stored_results":   stored,
		"result_ttl_secs":  int(c.ttl.Seconds()),
	}
}

func (c *ScanCoordinator) run(ctx context.Context, target models.ScanTarget, fingerprint string, entry *scanEntry) {
	log := c.logger.WithFingerprint(fingerprint)
	result := &models.ScanResult{
		ID:          uuid.New(),
		Target:      target,
		Fingerprint: fingerprint,
		State:       models.ScanStateScanning,
		StartedAt:   c.now(),
	}

	if cached, ok := c.fromCache(ctx, fingerprint); ok {
		c.mu.Lock()
		c.cacheHits++
		c.mu.Unlock()
		log.Debug().Msg("Served scan from cache")
		c.finish(fingerprint, entry, cached)
		return
	}

	features, err := c.extractor.Extract(target)
	if err != nil {
		log.Warn().Err(err).Msg("Target rejected as malformed")
		result.State = models.ScanStateFailed
		result.ErrorKind = models.ErrorKindMalformedTarget
		result.CompletedAt = c.now()
		c.finish(fingerprint, entry, result)
		return
	}

	risk := c.aggregator.Analyze(ctx, target, features)
	result.Risk = &risk
	result.State = models.ScanStateComplete
	result.CompletedAt = c.now()

	log.Info().
		Int("score", risk.Value).
		Str("band", risk.Band().String()).
		Dur("elapsed", result.CompletedAt.Sub(result.StartedAt)).
		Msg("Scan complete")

	c.finish(fingerprint, entry, result)

	if c.cache != nil {
		if err := c.cache.CacheScanResult(ctx, fingerprint, result, c.ttl); err != nil {
			log.Warn().Err(err).Msg("Failed to write result to cache")
		}
	}
}

// fromCache consults the shared cache tier for a fresh terminal result
func (c *ScanCoordinator) fromCache(ctx context.Context, fingerprint string) (*models.ScanResult, bool) {
	if c.cache == nil {
		return nil, false
	}

	var cached models.ScanResult
	err := c.cache.GetCachedScanResult(ctx, fingerprint, &cached)
	if err != nil {
		if !cache.IsMiss(err) {
			c.logger.Warn().Err(err).Str("fingerprint", fingerprint).Msg("Cache read failed")
		}
		return nil, false
	}
	if cached.State == models.ScanStateScanning {
		return nil, false
	}
	return &cached, true
}

// finish publishes the terminal result. The result pointer is stored before
// done is closed, so every waiter observes the same object.
func (c *ScanCoordinator) finish(fingerprint string, entry *scanEntry, result *models.ScanResult) {
	c.mu.Lock()
	entry.result = result
	entry.expiresAt = c.now().Add(c.ttl)
	c.mu.Unlock()
	close(entry.done)
}
