package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securiguard/internal/domain/models"
	"securiguard/pkg/logger"
)

func TestFuseBaseline(t *testing.T) {
	fuser := NewFuser(logger.Nop())

	score := fuser.Fuse(nil, nil, nil)
	assert.Equal(t, 50, score.Value)
	assert.Equal(t, models.RiskBandCaution, score.Band())
}

func TestFuseHeuristicOnly(t *testing.T) {
	fuser := NewFuser(logger.Nop())

	indicators := []models.Indicator{
		{Kind: models.IndicatorIPAddress, Confidence: 0.8, ScoreDelta: 16},
		{Kind: models.IndicatorLoginKeywords, Confidence: 0.7, ScoreDelta: 7},
	}
	score := fuser.Fuse(indicators, nil, nil)
	assert.Equal(t, 73, score.Value)
	assert.Equal(t, indicators, score.Indicators)
}

func TestFuseBlendsProviderScores(t *testing.T) {
	fuser := NewFuser(logger.Nop())

	results := []models.ProviderResult{
		models.SucceededResult("p1", 100, 0),
	}
	weights := map[string]float64{"p1": 0.4}

	// heuristic 50, blend 100 -> (50+100)/2
	score := fuser.Fuse(nil, results, weights)
	assert.Equal(t, 75, score.Value)
}

func TestFuseRenormalizesOverSucceededProviders(t *testing.T) {
	// Nominal weights 0.4/0.4/0.2; the first provider fails, so the
	// survivors split its influence 2/3 and 1/3.
	results := []models.ProviderResult{
		models.FailedResult("p1", 0),
		models.SucceededResult("p2", 90, 0),
		models.SucceededResult("p3", 30, 0),
	}
	nominal := map[string]float64{"p1": 0.4, "p2": 0.4, "p3": 0.2}

	weights := renormalizedWeights(results, nominal)
	require.Len(t, weights, 2)
	assert.InDelta(t, 0.667, weights["p2"], 0.001)
	assert.InDelta(t, 0.333, weights["p3"], 0.001)

	// blend = 90*2/3 + 30*1/3 = 70; value = round((50+70)/2)
	score := NewFuser(logger.Nop()).Fuse(nil, results, nominal)
	assert.Equal(t, 60, score.Value)
}

func TestFuseIgnoresOutOfRangeScores(t *testing.T) {
	fuser := NewFuser(logger.Nop())

	bad := models.SucceededResult("p1", 150, 0)
	score := fuser.Fuse(nil, []models.ProviderResult{bad}, map[string]float64{"p1": 0.4})

	// the invalid provider carries no influence
	assert.Equal(t, 50, score.Value)
}

func TestFuseAllProvidersFailed(t *testing.T) {
	fuser := NewFuser(logger.Nop())

	indicators := []models.Indicator{{Kind: models.IndicatorSuspiciousTLD, ScoreDelta: 6}}
	results := []models.ProviderResult{
		models.FailedResult("p1", 0),
		models.FailedResult("p2", 0),
	}
	score := fuser.Fuse(indicators, results, map[string]float64{"p1": 0.4, "p2": 0.4})

	assert.Equal(t, 56, score.Value)
	// failed providers stay in the audit trail
	require.Len(t, score.Providers, 2)
	assert.False(t, score.Providers[0].Succeeded)
}

func TestFuseClampsToBounds(t *testing.T) {
	fuser := NewFuser(logger.Nop())

	var indicators []models.Indicator
	for i := 0; i < 10; i++ {
		indicators = append(indicators, models.Indicator{Kind: models.IndicatorTyposquatting, ScoreDelta: 23})
	}
	score := fuser.Fuse(indicators, nil, nil)
	assert.Equal(t, 100, score.Value)
}

func TestFuseIsMonotonicInIndicators(t *testing.T) {
	fuser := NewFuser(logger.Nop())

	results := []models.ProviderResult{models.SucceededResult("p1", 40, 0)}
	weights := map[string]float64{"p1": 0.5}

	indicators := []models.Indicator{}
	previous := fuser.Fuse(indicators, results, weights).Value
	for _, delta := range []int{3, 7, 16, 23} {
		indicators = append(indicators, models.Indicator{Kind: models.IndicatorIPAddress, ScoreDelta: delta})
		value := fuser.Fuse(indicators, results, weights).Value
		assert.GreaterOrEqual(t, value, previous)
		previous = value
	}
}

func TestFusePreservesAuditOrder(t *testing.T) {
	fuser := NewFuser(logger.Nop())

	results := []models.ProviderResult{
		models.SucceededResult("alpha", 10, 0),
		models.FailedResult("beta", 0),
		models.SucceededResult("gamma", 90, 0),
	}
	score := fuser.Fuse(nil, results, map[string]float64{"alpha": 0.3, "gamma": 0.3})

	require.Len(t, score.Providers, 3)
	assert.Equal(t, "alpha", score.Providers[0].ProviderID)
	assert.Equal(t, "beta", score.Providers[1].ProviderID)
	assert.Equal(t, "gamma", score.Providers[2].ProviderID)
}
