package models

import "time"

// ProviderResult is the outcome of querying one external intelligence provider
// during a single scan attempt. Never mutated after the provider call returns.
// A failed query carries Succeeded=false and a nil RawScore; the fusion treats
// it as absent and renormalizes the remaining provider weights.
type ProviderResult struct {
	ProviderID string         `json:"provider_id"`
	Succeeded  bool           `json:"succeeded"`
	RawScore   *float64       `json:"raw_score,omitempty"` // 0-100 when present
	Signals    map[string]any `json:"signals,omitempty"`
	Latency    time.Duration  `json:"latency"`
}

// SucceededResult builds a successful ProviderResult with the given score
func SucceededResult(providerID string, score float64, latency time.Duration) ProviderResult {
	return ProviderResult{
		ProviderID: providerID,
		Succeeded:  true,
		RawScore:   &score,
		Latency:    latency,
	}
}

// FailedResult builds a failed ProviderResult
func FailedResult(providerID string, latency time.Duration) ProviderResult {
	return ProviderResult{
		ProviderID: providerID,
		Succeeded:  false,
		Latency:    latency,
	}
}
