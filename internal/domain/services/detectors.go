package services

import (
	"fmt"
	"math"
	"strings"

	"securiguard/internal/domain/models"
	"securiguard/pkg/logger"
)

// Per-rule weights. The score delta of an indicator is its confidence times
// the rule weight, rounded. Weights rank how damning a rule is on its own:
// typosquatting and executables near the top, cosmetic signals at the bottom.
const (
	weightTyposquat      = 25
	weightIPAddress      = 20
	weightSuspiciousTLD  = 12
	weightLoginKeywords  = 10
	weightSecurityWords  = 10
	weightSpecialChars   = 8
	weightSubdomains     = 8
	weightNoTLS          = 6

	weightCredentialReq  = 18
	weightFinancial      = 14
	weightUrgency        = 12
	weightMalformedLink  = 12
	weightShortener      = 10
	weightSubjectPattern = 10
	weightSender         = 8

	weightExecutable = 20
	weightScript     = 15
	weightArchive    = 10
	weightOversized  = 6
)

// oversizedFileBytes is the size above which a file draws an extra look
const oversizedFileBytes = 10 * 1024 * 1024

// TLDs with outsized phishing abuse relative to legitimate use
var suspiciousTLDs = map[string]bool{
	".xyz":   true,
	".top":   true,
	".loan":  true,
	".click": true,
	".work":  true,
	".site":  true,
	".tk":    true,
	".ml":    true,
	".ga":    true,
	".cf":    true,
	".gq":    true,
}

var (
	loginKeywords    = []string{"login", "signin", "sign-in", "logon", "auth"}
	securityKeywords = []string{"secure", "account", "verify", "update", "confirm", "banking"}
)

// detector is one heuristic rule. Check returns nil when the rule does not
// fire; otherwise exactly one indicator.
type detector struct {
	kind  models.TargetKind
	check func(fs *models.FeatureSet) *models.Indicator
}

// HeuristicDetectors runs the local rule set over a feature set. Rules are
// registered once in a fixed order, so the indicator slice for identical
// inputs is always identical, element for element.
type HeuristicDetectors struct {
	detectors []detector
	logger    *logger.Logger
}

// NewHeuristicDetectors creates the detector set with its standard rules
func NewHeuristicDetectors(log *logger.Logger) *HeuristicDetectors {
	h := &HeuristicDetectors{
		logger: log.WithComponent("heuristic-detectors"),
	}
	h.registerURLRules()
	h.registerEmailRules()
	h.registerFileRules()
	return h
}

// Detect runs every applicable rule and returns the indicators that fired,
// in registration order
func (h *HeuristicDetectors) Detect(fs *models.FeatureSet) []models.Indicator {
	indicators := make([]models.Indicator, 0, 4)
	for _, d := range h.detectors {
		if d.kind != fs.Kind {
			continue
		}
		if indicator := d.check(fs); indicator != nil {
			indicators = append(indicators, *indicator)
		}
	}

	h.logger.Debug().
		Str("kind", fs.Kind.String()).
		Int("indicators", len(indicators)).
		Msg("Heuristic detection complete")

	return indicators
}

func (h *HeuristicDetectors) register(kind models.TargetKind, check func(fs *models.FeatureSet) *models.Indicator) {
	h.detectors = append(h.detectors, detector{kind: kind, check: check})
}

func (h *HeuristicDetectors) registerURLRules() {
	h.register(models.TargetKindURL, func(fs *models.FeatureSet) *models.Indicator {
		if fs.URL.HostLabel == "" {
			return nil
		}
		brand, ok := matchTyposquat(fs.URL.HostLabel)
		if !ok {
			return nil
		}
		return newIndicator(models.IndicatorTyposquatting, 0.9, weightTyposquat,
			fmt.Sprintf("domain %q imitates %q", fs.URL.Host, brand))
	})

	h.register(models.TargetKindURL, func(fs *models.FeatureSet) *models.Indicator {
		if !fs.URL.IsIPAddress {
			return nil
		}
		return newIndicator(models.IndicatorIPAddress, 0.8, weightIPAddress,
			"URL addresses a raw IP instead of a domain")
	})

	h.register(models.TargetKindURL, func(fs *models.FeatureSet) *models.Indicator {
		if !suspiciousTLDs[fs.URL.TLD] {
			return nil
		}
		return newIndicator(models.IndicatorSuspiciousTLD, 0.5, weightSuspiciousTLD,
			fmt.Sprintf("top-level domain %q is frequently abused", fs.URL.TLD))
	})

	h.register(models.TargetKindURL, func(fs *models.FeatureSet) *models.Indicator {
		if !containsAnyKeyword(fs.URL, loginKeywords) {
			return nil
		}
		return newIndicator(models.IndicatorLoginKeywords, 0.7, weightLoginKeywords,
			"URL contains login-related keywords")
	})

	h.register(models.TargetKindURL, func(fs *models.FeatureSet) *models.Indicator {
		if !containsAnyKeyword(fs.URL, securityKeywords) {
			return nil
		}
		return newIndicator(models.IndicatorSecurityKeywords, 0.6, weightSecurityWords,
			"URL contains security-related keywords")
	})

	h.register(models.TargetKindURL, func(fs *models.FeatureSet) *models.Indicator {
		if !fs.URL.HasSpecialChars {
			return nil
		}
		return newIndicator(models.IndicatorSpecialChars, 0.6, weightSpecialChars,
			"URL contains unusual punctuation")
	})

	h.register(models.TargetKindURL, func(fs *models.FeatureSet) *models.Indicator {
		if fs.URL.SubdomainDepth <= 2 {
			return nil
		}
		return newIndicator(models.IndicatorExcessiveSubdomains, 0.5, weightSubdomains,
			fmt.Sprintf("host nests %d subdomain levels", fs.URL.SubdomainDepth))
	})

	h.register(models.TargetKindURL, func(fs *models.FeatureSet) *models.Indicator {
		if fs.URL.UsesTLS {
			return nil
		}
		return newIndicator(models.IndicatorNoTLS, 0.5, weightNoTLS,
			"connection is not encrypted")
	})
}

func (h *HeuristicDetectors) registerEmailRules() {
	h.register(models.TargetKindEmail, func(fs *models.FeatureSet) *models.Indicator {
		if !fs.Email.RequestsCredentials {
			return nil
		}
		return newIndicator(models.IndicatorCredentialRequest, 0.75, weightCredentialReq,
			"message asks for credentials or personal data")
	})

	h.register(models.TargetKindEmail, func(fs *models.FeatureSet) *models.Indicator {
		if !fs.Email.HasFinancialKeywords {
			return nil
		}
		return newIndicator(models.IndicatorFinancialKeywords, 0.7, weightFinancial,
			"message uses money-related lures")
	})

	h.register(models.TargetKindEmail, func(fs *models.FeatureSet) *models.Indicator {
		if !fs.Email.HasUrgencyLanguage {
			return nil
		}
		return newIndicator(models.IndicatorUrgencyLanguage, 0.7, weightUrgency,
			"message pressures the reader to act immediately")
	})

	h.register(models.TargetKindEmail, func(fs *models.FeatureSet) *models.Indicator {
		if len(fs.Email.MalformedLinks) == 0 {
			return nil
		}
		return newIndicator(models.IndicatorMalformedLink, 0.6, weightMalformedLink,
			fmt.Sprintf("%d link(s) could not be parsed", len(fs.Email.MalformedLinks)))
	})

	h.register(models.TargetKindEmail, func(fs *models.FeatureSet) *models.Indicator {
		if len(fs.Email.ShortenerHosts) == 0 {
			return nil
		}
		return newIndicator(models.IndicatorLinkShortener, 0.7, weightShortener,
			fmt.Sprintf("links pass through shortener(s): %s", strings.Join(fs.Email.ShortenerHosts, ", ")))
	})

	h.register(models.TargetKindEmail, func(fs *models.FeatureSet) *models.Indicator {
		if len(fs.Email.SubjectMatches) == 0 {
			return nil
		}
		return newIndicator(models.IndicatorSubjectPattern, 0.6, weightSubjectPattern,
			fmt.Sprintf("subject matches known lure phrasing: %s", strings.Join(fs.Email.SubjectMatches, ", ")))
	})

	h.register(models.TargetKindEmail, func(fs *models.FeatureSet) *models.Indicator {
		if !fs.Email.SuspiciousSender {
			return nil
		}
		return newIndicator(models.IndicatorSuspiciousSender, 0.6, weightSender,
			"sender address imitates automated mail")
	})
}

func (h *HeuristicDetectors) registerFileRules() {
	h.register(models.TargetKindFile, func(fs *models.FeatureSet) *models.Indicator {
		if fs.File.Class != models.FileClassExecutable {
			return nil
		}
		return newIndicator(models.IndicatorExecutableFile, 0.8, weightExecutable,
			fmt.Sprintf("%q is an executable", fs.File.Name))
	})

	h.register(models.TargetKindFile, func(fs *models.FeatureSet) *models.Indicator {
		if fs.File.Class != models.FileClassScript {
			return nil
		}
		return newIndicator(models.IndicatorScriptFile, 0.7, weightScript,
			fmt.Sprintf("%q is a script", fs.File.Name))
	})

	h.register(models.TargetKindFile, func(fs *models.FeatureSet) *models.Indicator {
		if fs.File.Class != models.FileClassArchive {
			return nil
		}
		return newIndicator(models.IndicatorArchiveFile, 0.6, weightArchive,
			fmt.Sprintf("%q is an archive that can hide payloads", fs.File.Name))
	})

	h.register(models.TargetKindFile, func(fs *models.FeatureSet) *models.Indicator {
		if fs.File.SizeBytes <= oversizedFileBytes {
			return nil
		}
		return newIndicator(models.IndicatorOversizedFile, 0.5, weightOversized,
			fmt.Sprintf("file is %d bytes, above the %d byte review threshold", fs.File.SizeBytes, oversizedFileBytes))
	})
}

// newIndicator builds an indicator with its delta derived from confidence
// and rule weight
func newIndicator(kind models.IndicatorKind, confidence float64, weight int, description string) *models.Indicator {
	return &models.Indicator{
		Kind:        kind,
		Confidence:  confidence,
		ScoreDelta:  int(math.Round(confidence * float64(weight))),
		Description: description,
	}
}

// containsAnyKeyword checks host and path for any of the given keywords
func containsAnyKeyword(u *models.URLFeatures, keywords []string) bool {
	haystack := strings.ToLower(u.Host + u.Path)
	for _, keyword := range keywords {
		if strings.Contains(haystack, keyword) {
			return true
		}
	}
	return false
}
