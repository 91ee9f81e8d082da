package models

import "time"

// RiskBand is the coarse classification derived from a risk score value
type RiskBand string

const (
	RiskBandSafe    RiskBand = "safe"    // value <= 30
	RiskBandCaution RiskBand = "caution" // 31..70
	RiskBandDanger  RiskBand = "danger"  // > 70
)

// BandFor returns the risk band for a score value
func BandFor(value int) RiskBand {
	switch {
	case value <= 30:
		return RiskBandSafe
	case value <= 70:
		return RiskBandCaution
	default:
		return RiskBandDanger
	}
}

// RiskScore is the fused verdict for one scan. Value is clamped to [0,100];
// higher means riskier, 50 is the neutral baseline. The contributing slices
// form the audit trail: indicators in detector-registration order, providers
// in provider-registration order, so identical inputs produce identical trails.
type RiskScore struct {
	Value      int              `json:"value"`
	Indicators []Indicator      `json:"indicators"`
	Providers  []ProviderResult `json:"providers"`
	ComputedAt time.Time        `json:"computed_at"`
}

// Band returns the risk band for this score
func (s RiskScore) Band() RiskBand {
	return BandFor(s.Value)
}

// String returns the string representation of RiskBand
func (b RiskBand) String() string {
	return string(b)
}
