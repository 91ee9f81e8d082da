package models

// IndicatorKind identifies the heuristic rule that produced an indicator.
// Each rule emits at most one Indicator per target to avoid double-counting.
type IndicatorKind string

const (
	// URL indicators
	IndicatorTyposquatting       IndicatorKind = "typosquatting"
	IndicatorSuspiciousTLD       IndicatorKind = "suspicious_tld"
	IndicatorIPAddress           IndicatorKind = "ip_address"
	IndicatorLoginKeywords       IndicatorKind = "login_keywords"
	IndicatorSecurityKeywords    IndicatorKind = "security_keywords"
	IndicatorSpecialChars        IndicatorKind = "special_chars"
	IndicatorExcessiveSubdomains IndicatorKind = "excessive_subdomains"
	IndicatorNoTLS               IndicatorKind = "no_tls"

	// Email indicators
	IndicatorUrgencyLanguage   IndicatorKind = "urgency_language"
	IndicatorFinancialKeywords IndicatorKind = "financial_keywords"
	IndicatorCredentialRequest IndicatorKind = "credential_request"
	IndicatorSuspiciousSender  IndicatorKind = "suspicious_sender"
	IndicatorSubjectPattern    IndicatorKind = "subject_pattern"
	IndicatorLinkShortener     IndicatorKind = "link_shortener"
	IndicatorMalformedLink     IndicatorKind = "malformed_link"

	// File indicators
	IndicatorExecutableFile IndicatorKind = "executable_file"
	IndicatorScriptFile     IndicatorKind = "script_file"
	IndicatorArchiveFile    IndicatorKind = "archive_file"
	IndicatorOversizedFile  IndicatorKind = "oversized_file"
)

// Indicator is a discrete heuristic finding. Read-only after creation.
// ScoreDelta is always positive: the fused score grows with risk.
type Indicator struct {
	Kind        IndicatorKind `json:"kind"`
	Confidence  float64       `json:"confidence"` // 0.0 - 1.0
	ScoreDelta  int           `json:"score_delta"`
	Description string        `json:"description"`
}

// String returns the string representation of IndicatorKind
func (k IndicatorKind) String() string {
	return string(k)
}
