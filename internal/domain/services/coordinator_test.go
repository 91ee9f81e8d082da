package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securiguard/internal/domain/models"
	"securiguard/internal/providers"
	"securiguard/pkg/logger"
)

// stubAdapter is a controllable provider for coordinator tests
type stubAdapter struct {
	*providers.BaseAdapter
	score   float64
	fail    bool
	delay   time.Duration
	queries atomic.Int64
}

func newStubAdapter(id string, weight, score float64) *stubAdapter {
	s := &stubAdapter{
		BaseAdapter: providers.NewBaseAdapter(id, id),
		score:       score,
	}
	s.Configure(providers.AdapterConfig{Enabled: true, Weight: weight, Timeout: time.Second})
	return s
}

func (s *stubAdapter) Query(ctx context.Context, target models.ScanTarget) (models.ProviderResult, error) {
	s.queries.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return models.FailedResult(s.ID(), 0), ctx.Err()
		}
	}
	if s.fail {
		return models.FailedResult(s.ID(), 0), errors.New("stub failure")
	}
	return models.SucceededResult(s.ID(), s.score, 0), nil
}

func newTestCoordinator(t *testing.T, ttl time.Duration, adapters ...providers.Adapter) *ScanCoordinator {
	t.Helper()
	log := logger.Nop()

	registry := providers.NewRegistry(log)
	for _, adapter := range adapters {
		require.NoError(t, registry.Register(adapter))
	}

	detectors := NewHeuristicDetectors(log)
	fuser := NewFuser(log)
	aggregator := NewAggregator(detectors, fuser, registry, 2*time.Second, log)
	return NewScanCoordinator(NewFeatureExtractor(log), aggregator, nil, ttl, log)
}

func TestScanCompletes(t *testing.T) {
	stub := newStubAdapter("stub", 0.4, 80)
	coordinator := newTestCoordinator(t, time.Minute, stub)

	handle := coordinator.Scan(context.Background(), models.NewURLTarget("http://192.168.1.1/login"))
	result, err := handle.Wait(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.ScanStateComplete, result.State)
	require.NotNil(t, result.Risk)
	assert.Greater(t, result.Risk.Value, 50)
	require.Len(t, result.Risk.Providers, 1)
	assert.True(t, result.Risk.Providers[0].Succeeded)
}

func TestScanSingleFlight(t *testing.T) {
	stub := newStubAdapter("stub", 0.4, 60)
	stub.delay = 100 * time.Millisecond
	coordinator := newTestCoordinator(t, time.Minute, stub)

	target := models.NewURLTarget("https://example.com/shared")
	const callers = 8

	var wg sync.WaitGroup
	results := make([]*models.ScanResult, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handle := coordinator.Scan(context.Background(), target)
			result, err := handle.Wait(context.Background())
			assert.NoError(t, err)
			results[i] = result
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), stub.queries.Load(), "providers must run once per fingerprint")
	for i := 1; i < callers; i++ {
		assert.Same(t, results[0], results[i], "all callers share one result object")
	}
}

func TestScanResultIsReusedWithinTTL(t *testing.T) {
	stub := newStubAdapter("stub", 0.4, 60)
	coordinator := newTestCoordinator(t, time.Minute, stub)

	target := models.NewURLTarget("https://example.com")
	first, err := coordinator.Scan(context.Background(), target).Wait(context.Background())
	require.NoError(t, err)

	second, err := coordinator.Scan(context.Background(), target).Wait(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int64(1), stub.queries.Load())
}

func TestScanResultExpires(t *testing.T) {
	stub := newStubAdapter("stub", 0.4, 60)
	coordinator := newTestCoordinator(t, 30*time.Millisecond, stub)

	target := models.NewURLTarget("https://example.com")
	_, err := coordinator.Scan(context.Background(), target).Wait(context.Background())
	require.NoError(t, err)

	time.Sleep(60 * time.Millisecond)

	_, err = coordinator.Scan(context.Background(), target).Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stub.queries.Load())
}

func TestInvalidateForcesRescan(t *testing.T) {
	stub := newStubAdapter("stub", 0.4, 60)
	coordinator := newTestCoordinator(t, time.Minute, stub)

	target := models.NewURLTarget("https://example.com")
	_, err := coordinator.Scan(context.Background(), target).Wait(context.Background())
	require.NoError(t, err)

	assert.True(t, coordinator.Invalidate(context.Background(), target.Fingerprint()))
	assert.False(t, coordinator.Invalidate(context.Background(), target.Fingerprint()))

	_, err = coordinator.Scan(context.Background(), target).Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stub.queries.Load())
}

func TestMalformedTargetFailsScan(t *testing.T) {
	coordinator := newTestCoordinator(t, time.Minute)

	handle := coordinator.Scan(context.Background(), models.NewURLTarget("http://[::1"))
	result, err := handle.Wait(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.ScanStateFailed, result.State)
	assert.Equal(t, models.ErrorKindMalformedTarget, result.ErrorKind)
	assert.Nil(t, result.Risk)
}

func TestTotalProviderFailureStillCompletes(t *testing.T) {
	stub := newStubAdapter("stub", 0.4, 0)
	stub.fail = true
	coordinator := newTestCoordinator(t, time.Minute, stub)

	result, err := coordinator.Scan(context.Background(), models.NewURLTarget("https://example.com")).Wait(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.ScanStateComplete, result.State)
	require.NotNil(t, result.Risk)
	assert.Equal(t, 50, result.Risk.Value)
}

func TestScanSurvivesCallerCancellation(t *testing.T) {
	stub := newStubAdapter("stub", 0.4, 60)
	stub.delay = 50 * time.Millisecond
	coordinator := newTestCoordinator(t, time.Minute, stub)

	target := models.NewURLTarget("https://example.com")

	ctx, cancel := context.WithCancel(context.Background())
	handle := coordinator.Scan(ctx, target)
	cancel()

	_, err := handle.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	// The abandoned scan still finishes and its result is reusable
	result, err := handle.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ScanStateComplete, result.State)
	assert.Equal(t, int64(1), stub.queries.Load())
}

func TestScanStats(t *testing.T) {
	stub := newStubAdapter("stub", 0.4, 60)
	coordinator := newTestCoordinator(t, time.Minute, stub)

	target := models.NewURLTarget("https://example.com")
	_, err := coordinator.Scan(context.Background(), target).Wait(context.Background())
	require.NoError(t, err)
	_, err = coordinator.Scan(context.Background(), target).Wait(context.Background())
	require.NoError(t, err)

	stats := coordinator.Stats()
	assert.Equal(t, uint64(1), stats["scans_started"])
	assert.Equal(t, uint64(1), stats["scans_deduped"])
	assert.Equal(t, 1, stats["stored_results"])
}
