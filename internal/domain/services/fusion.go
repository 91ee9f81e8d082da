package services

import (
	"math"
	"time"

	"securiguard/internal/domain/models"
	"securiguard/pkg/logger"
)

// BaselineScore is the neutral starting point of every fused score.
// A target with no indicators and no provider signal scores exactly this.
const BaselineScore = 50

// Fuser combines heuristic indicators and provider results into one bounded
// risk score.
//
// The heuristic side starts at the baseline and adds every indicator's delta.
// The provider side is the weighted mean of the succeeded providers' raw
// scores, with nominal weights renormalized over the succeeded set so that a
// failed provider shifts influence proportionally instead of dragging the
// blend toward zero. With at least one succeeded provider the final value is
// the mean of the two sides; with none it is the heuristic side alone.
type Fuser struct {
	logger *logger.Logger
	now    func() time.Time
}

// NewFuser creates a new score fuser
func NewFuser(log *logger.Logger) *Fuser {
	return &Fuser{
		logger: log.WithComponent("fuser"),
		now:    time.Now,
	}
}

// Fuse computes the risk score for one scan. indicators and results must
// already be in their registration order; Fuse preserves both slices as the
// audit trail. weights maps provider ID to its nominal fusion weight.
func (f *Fuser) Fuse(indicators []models.Indicator, results []models.ProviderResult, weights map[string]float64) models.RiskScore {
	heuristic := float64(BaselineScore)
	for _, indicator := range indicators {
		heuristic += float64(indicator.ScoreDelta)
	}
	heuristic = clamp(heuristic)

	value := heuristic
	renormalized := renormalizedWeights(results, weights)
	if len(renormalized) > 0 {
		blend := 0.0
		for _, result := range results {
			weight, ok := renormalized[result.ProviderID]
			if !ok {
				continue
			}
			blend += weight * *result.RawScore
		}
		value = (heuristic + blend) / 2
	}

	score := models.RiskScore{
		Value:      int(math.Round(clamp(value))),
		Indicators: indicators,
		Providers:  results,
		ComputedAt: f.now(),
	}

	f.logger.Debug().
		Int("value", score.Value).
		Str("band", score.Band().String()).
		Int("indicators", len(indicators)).
		Int("providers", len(results)).
		Msg("Score fused")

	return score
}

// renormalizedWeights rescales the nominal weights of the providers that
// succeeded so they sum to 1. Providers that failed, or whose raw score is
// outside [0,100], get no entry and therefore no influence.
func renormalizedWeights(results []models.ProviderResult, nominal map[string]float64) map[string]float64 {
	total := 0.0
	for _, result := range results {
		if !usableResult(result) {
			continue
		}
		total += nominal[result.ProviderID]
	}
	if total <= 0 {
		return nil
	}

	weights := make(map[string]float64)
	for _, result := range results {
		if !usableResult(result) {
			continue
		}
		weights[result.ProviderID] = nominal[result.ProviderID] / total
	}
	return weights
}

func usableResult(result models.ProviderResult) bool {
	return result.Succeeded && result.RawScore != nil &&
		*result.RawScore >= 0 && *result.RawScore <= 100
}

func clamp(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}
