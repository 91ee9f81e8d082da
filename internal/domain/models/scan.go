package models

import (
	"time"

	"github.com/google/uuid"
)

// ScanState represents the lifecycle state of a scan
type ScanState string

const (
	ScanStateScanning ScanState = "scanning"
	ScanStateComplete ScanState = "complete"
	ScanStateFailed   ScanState = "failed"
)

// ErrorKind classifies scan-level failures for the consuming UI, so it can
// distinguish "could not assess" from "assessed as safe".
type ErrorKind string

const (
	ErrorKindMalformedTarget      ErrorKind = "malformed_target"
	ErrorKindProviderTimeout      ErrorKind = "provider_timeout"
	ErrorKindProviderUnavailable  ErrorKind = "provider_unavailable"
	ErrorKindInvalidProviderScore ErrorKind = "invalid_provider_score"
)

// ScanResult is the outcome of scanning one target. It is created in the
// Scanning state when the coordinator admits a new fingerprint, transitions
// to Complete or Failed exactly once, and is immutable thereafter.
type ScanResult struct {
	ID          uuid.UUID  `json:"id"`
	Target      ScanTarget `json:"target"`
	Fingerprint string     `json:"fingerprint"`
	State       ScanState  `json:"state"`
	Risk        *RiskScore `json:"risk,omitempty"`
	ErrorKind   ErrorKind  `json:"error_kind,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt time.Time  `json:"completed_at,omitzero"`
}

// ProviderSummary is the wire form of one provider outcome
type ProviderSummary struct {
	ID        string   `json:"id"`
	Succeeded bool     `json:"succeeded"`
	RawScore  *float64 `json:"raw_score,omitempty"`
}

// RiskScoreSummary is the wire form of a fused score
type RiskScoreSummary struct {
	Value int      `json:"value"`
	Band  RiskBand `json:"band"`
}

// ScanResponse is the serialized form of a ScanResult handed to the UI layer
type ScanResponse struct {
	Fingerprint     string            `json:"fingerprint"`
	State           ScanState         `json:"state"`
	RiskScore       *RiskScoreSummary `json:"risk_score,omitempty"`
	Indicators      []Indicator       `json:"indicators,omitempty"`
	Providers       []ProviderSummary `json:"providers,omitempty"`
	Recommendations []string          `json:"recommendations,omitempty"`
	Error           string            `json:"error,omitempty"`
	Timestamp       time.Time         `json:"timestamp"`
}

// ToResponse converts a ScanResult into its wire form
func (r *ScanResult) ToResponse() ScanResponse {
	resp := ScanResponse{
		Fingerprint: r.Fingerprint,
		State:       r.State,
		Error:       string(r.ErrorKind),
		Timestamp:   r.CompletedAt,
	}
	if resp.Timestamp.IsZero() {
		resp.Timestamp = r.StartedAt
	}
	if r.Risk != nil {
		resp.RiskScore = &RiskScoreSummary{Value: r.Risk.Value, Band: r.Risk.Band()}
		resp.Indicators = r.Risk.Indicators
		resp.Recommendations = RecommendationsFor(r.Risk.Indicators)
		resp.Providers = make([]ProviderSummary, 0, len(r.Risk.Providers))
		for _, pr := range r.Risk.Providers {
			resp.Providers = append(resp.Providers, ProviderSummary{
				ID:        pr.ProviderID,
				Succeeded: pr.Succeeded,
				RawScore:  pr.RawScore,
			})
		}
	}
	return resp
}
