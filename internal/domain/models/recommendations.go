package models

// Advice shown to the user alongside an indicator. Not every indicator
// carries advice; cosmetic signals speak for themselves.
var indicatorAdvice = map[IndicatorKind]string{
	IndicatorTyposquatting:     "Check the address carefully; it imitates a well-known brand.",
	IndicatorIPAddress:         "Legitimate services rarely use raw IP addresses. Do not enter credentials.",
	IndicatorNoTLS:             "The connection is unencrypted. Do not submit sensitive data.",
	IndicatorCredentialRequest: "Never share passwords or personal data requested by email.",
	IndicatorUrgencyLanguage:   "Pressure to act immediately is a common phishing tactic. Slow down.",
	IndicatorFinancialKeywords: "Verify any payment request through a channel you already trust.",
	IndicatorSuspiciousSender:  "Confirm the sender's identity before responding.",
	IndicatorLinkShortener:     "Shortened links hide their destination. Expand them before clicking.",
	IndicatorMalformedLink:     "Broken or disguised links often hide a different destination.",
	IndicatorExecutableFile:    "Do not run this file unless you requested it from a trusted source.",
	IndicatorScriptFile:        "Script files can execute arbitrary code when opened.",
	IndicatorArchiveFile:       "Scan archive contents before extracting them.",
}

// RecommendationsFor returns user-facing advice for the indicators that
// fired, in indicator order, without duplicates.
func RecommendationsFor(indicators []Indicator) []string {
	seen := make(map[string]bool)
	var advice []string
	for _, indicator := range indicators {
		text, ok := indicatorAdvice[indicator.Kind]
		if !ok || seen[text] {
			continue
		}
		seen[text] = true
		advice = append(advice, text)
	}
	return advice
}
