package services

import (
	"context"
	"sync"
	"time"

	"securiguard/internal/domain/models"
	"securiguard/internal/providers"
	"securiguard/pkg/logger"
)

// Aggregator runs the full analysis pipeline for one target: heuristic
// detection, concurrent provider fan-out under a shared deadline, and fusion.
type Aggregator struct {
	detectors *HeuristicDetectors
	fuser     *Fuser
	registry  *providers.Registry
	deadline  time.Duration
	logger    *logger.Logger
}

// NewAggregator creates a new aggregator. deadline bounds the whole provider
// fan-out; individual providers may declare shorter timeouts of their own.
func NewAggregator(detectors *HeuristicDetectors, fuser *Fuser, registry *providers.Registry, deadline time.Duration, log *logger.Logger) *Aggregator {
	return &Aggregator{
		detectors: detectors,
		fuser:     fuser,
		registry:  registry,
		deadline:  deadline,
		logger:    log.WithComponent("aggregator"),
	}
}

// Analyze produces the fused risk score for a target whose features have
// already been extracted. Provider failures never fail the analysis; in the
// worst case the score rests on heuristics alone.
func (a *Aggregator) Analyze(ctx context.Context, target models.ScanTarget, features *models.FeatureSet) models.RiskScore {
	indicators := a.detectors.Detect(features)
	results := a.queryProviders(ctx, target)
	return a.fuser.Fuse(indicators, results, a.registry.Weights())
}

// queryProviders fans out to every enabled provider concurrently and collects
// results in registration order. Each provider gets its own timeout within
// the shared deadline.
func (a *Aggregator) queryProviders(ctx context.Context, target models.ScanTarget) []models.ProviderResult {
	enabled := a.registry.ListEnabled()
	if len(enabled) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.deadline)
	defer cancel()

	results := make([]models.ProviderResult, len(enabled))
	var wg sync.WaitGroup
	for i, adapter := range enabled {
		wg.Add(1)
		go func(i int, adapter providers.Adapter) {
			defer wg.Done()
			results[i] = a.queryOne(ctx, adapter, target)
		}(i, adapter)
	}
	wg.Wait()

	return results
}

func (a *Aggregator) queryOne(ctx context.Context, adapter providers.Adapter, target models.ScanTarget) models.ProviderResult {
	start := time.Now()
	log := a.logger.WithProvider(adapter.ID())

	if timeout := adapter.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := adapter.Query(ctx, target)
	if err != nil {
		log.Debug().Err(err).Dur("latency", time.Since(start)).Msg("Provider query failed")
		if !result.Succeeded {
			result.ProviderID = adapter.ID()
			return result
		}
	}

	// A succeeded result with an out-of-range score is a provider bug;
	// demote it to a failure rather than let it skew the blend.
	if result.Succeeded && (result.RawScore == nil || *result.RawScore < 0 || *result.RawScore > 100) {
		log.Warn().
			Interface("raw_score", result.RawScore).
			Str("error_kind", string(models.ErrorKindInvalidProviderScore)).
			Msg("Provider returned out-of-range score")
		return models.FailedResult(adapter.ID(), time.Since(start))
	}

	result.ProviderID = adapter.ID()
	return result
}
