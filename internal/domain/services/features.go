package services

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"securiguard/internal/domain/models"
	"securiguard/pkg/logger"
)

// ErrMalformedTarget is returned when a target cannot be parsed at all.
// It is the only extraction error that fails a scan outright.
var ErrMalformedTarget = errors.New("malformed target")

var (
	ipv4Pattern = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}$`)
	ipv6Pattern = regexp.MustCompile(`^\[?([0-9a-fA-F]{0,4}:){2,7}[0-9a-fA-F]{0,4}\]?$`)

	// Punctuation that legitimate hosts and paths rarely carry
	specialCharPattern = regexp.MustCompile("[<>{}\\[\\]\\\\^~`@#$%&*()_+=|'\";:,?]")

	linkPattern = regexp.MustCompile(`https?://[^\s<>"']+`)
)

// Phrase lists behind the email heuristics. Matching is case-insensitive
// substring matching over subject and body.
var (
	urgencyPhrases = []string{
		"urgent", "immediate action", "act now", "expires today", "expire",
		"final notice", "last chance", "verify now", "within 24 hours",
		"account suspended", "account will be closed",
	}

	financialPhrases = []string{
		"wire transfer", "bank account", "payment", "invoice", "refund",
		"lottery", "prize", "inheritance", "bitcoin", "gift card",
	}

	credentialPhrases = []string{
		"password", "ssn", "social security", "credit card", "card number",
		"verify your account", "confirm your identity", "login credentials",
		"security question", "pin number",
	}

	suspiciousSubjectPhrases = []string{
		"re: your account", "verification required", "suspicious activity",
		"unusual sign-in", "payment declined", "you have won",
		"delivery failed", "invoice attached", "password reset",
	}
)

// suspiciousSenderPattern flags senders that impersonate automated mail
var suspiciousSenderPattern = regexp.MustCompile(`(?i)(no-?reply|support|help|security|admin|service)@`)

// Known link-shortener hosts. Shorteners hide the destination, which is a
// mild phishing signal on its own.
var shortenerHosts = map[string]bool{
	"bit.ly":       true,
	"tinyurl.com":  true,
	"goo.gl":       true,
	"t.co":         true,
	"ow.ly":        true,
	"is.gd":        true,
	"buff.ly":      true,
	"rebrand.ly":   true,
	"cutt.ly":      true,
	"shorturl.at":  true,
	"tiny.cc":      true,
	"rb.gy":        true,
	"short.link":   true,
	"snip.ly":      true,
	"lnkd.in":      true,
}

// extensionClasses maps file extensions to their coarse class
var extensionClasses = map[string]models.FileClass{
	".exe": models.FileClassExecutable,
	".msi": models.FileClassExecutable,
	".bat": models.FileClassExecutable,
	".cmd": models.FileClassExecutable,
	".scr": models.FileClassExecutable,
	".com": models.FileClassExecutable,
	".app": models.FileClassExecutable,
	".dmg": models.FileClassExecutable,

	".js":  models.FileClassScript,
	".vbs": models.FileClassScript,
	".ps1": models.FileClassScript,
	".sh":  models.FileClassScript,
	".py":  models.FileClassScript,
	".jar": models.FileClassScript,
	".hta": models.FileClassScript,

	".pdf":  models.FileClassDocument,
	".doc":  models.FileClassDocument,
	".docx": models.FileClassDocument,
	".xls":  models.FileClassDocument,
	".xlsx": models.FileClassDocument,
	".ppt":  models.FileClassDocument,
	".pptx": models.FileClassDocument,
	".rtf":  models.FileClassDocument,

	".zip": models.FileClassArchive,
	".rar": models.FileClassArchive,
	".7z":  models.FileClassArchive,
	".tar": models.FileClassArchive,
	".gz":  models.FileClassArchive,
	".iso": models.FileClassArchive,

	".jpg":  models.FileClassImage,
	".jpeg": models.FileClassImage,
	".png":  models.FileClassImage,
	".gif":  models.FileClassImage,
	".webp": models.FileClassImage,
	".svg":  models.FileClassImage,
}

// FeatureExtractor derives the variant-specific feature set for a target.
// Extraction is pure: it never touches the network and never scores anything.
type FeatureExtractor struct {
	logger *logger.Logger
}

// NewFeatureExtractor creates a new feature extractor
func NewFeatureExtractor(log *logger.Logger) *FeatureExtractor {
	return &FeatureExtractor{
		logger: log.WithComponent("feature-extractor"),
	}
}

// Extract computes the feature set for a target. A target that cannot be
// parsed returns ErrMalformedTarget; partial features are never returned.
func (e *FeatureExtractor) Extract(target models.ScanTarget) (*models.FeatureSet, error) {
	switch target.Kind {
	case models.TargetKindURL:
		features, err := e.extractURL(target.URL)
		if err != nil {
			return nil, err
		}
		return &models.FeatureSet{Kind: models.TargetKindURL, URL: features}, nil
	case models.TargetKindEmail:
		if target.Email == nil || target.Email.Sender == "" {
			return nil, fmt.Errorf("%w: email missing sender", ErrMalformedTarget)
		}
		return &models.FeatureSet{Kind: models.TargetKindEmail, Email: e.extractEmail(target.Email)}, nil
	case models.TargetKindFile:
		if target.File == nil || target.File.Name == "" {
			return nil, fmt.Errorf("%w: file missing name", ErrMalformedTarget)
		}
		return &models.FeatureSet{Kind: models.TargetKindFile, File: e.extractFile(target.File)}, nil
	default:
		return nil, fmt.Errorf("%w: unknown target kind %q", ErrMalformedTarget, target.Kind)
	}
}

func (e *FeatureExtractor) extractURL(rawURL string) (*models.URLFeatures, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty URL", ErrMalformedTarget)
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTarget, err)
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return nil, fmt.Errorf("%w: URL has no host", ErrMalformedTarget)
	}

	features := &models.URLFeatures{
		Scheme:         strings.ToLower(parsed.Scheme),
		Host:           host,
		Path:           parsed.Path,
		HasQueryParams: parsed.RawQuery != "",
		UsesTLS:        strings.EqualFold(parsed.Scheme, "https"),
	}

	features.IsIPAddress = ipv4Pattern.MatchString(host) || ipv6Pattern.MatchString(host)

	if !features.IsIPAddress {
		labels := strings.Split(host, ".")
		features.HostLabel = labels[0]
		if len(labels) >= 2 {
			features.TLD = "." + labels[len(labels)-1]
			// registrable domain label sits left of the TLD
			features.HostLabel = labels[len(labels)-2]
		}
		if len(labels) > 2 {
			features.SubdomainDepth = len(labels) - 2
		}
	}

	for _, segment := range strings.Split(parsed.Path, "/") {
		if segment != "" {
			features.PathSegmentCount++
		}
	}

	features.HasSpecialChars = specialCharPattern.MatchString(host + parsed.Path)

	return features, nil
}

func (e *FeatureExtractor) extractEmail(msg *models.EmailMessage) *models.EmailFeatures {
	features := &models.EmailFeatures{}

	if at := strings.LastIndex(msg.Sender, "@"); at >= 0 && at < len(msg.Sender)-1 {
		features.SenderDomain = strings.ToLower(msg.Sender[at+1:])
		features.HasSenderDomain = true
	}
	features.SuspiciousSender = suspiciousSenderPattern.MatchString(msg.Sender)

	text := strings.ToLower(msg.Subject + " " + msg.Content)
	features.HasUrgencyLanguage = containsAny(text, urgencyPhrases)
	features.HasFinancialKeywords = containsAny(text, financialPhrases)
	features.RequestsCredentials = containsAny(text, credentialPhrases)

	subject := strings.ToLower(msg.Subject)
	for _, phrase := range suspiciousSubjectPhrases {
		if strings.Contains(subject, phrase) {
			features.SubjectMatches = append(features.SubjectMatches, phrase)
		}
	}

	links := collectLinks(msg)
	features.LinkCount = len(links)
	for _, link := range links {
		parsed, err := url.Parse(link)
		if err != nil || parsed.Hostname() == "" {
			features.MalformedLinks = append(features.MalformedLinks, link)
			continue
		}
		host := strings.ToLower(parsed.Hostname())
		if shortenerHosts[host] {
			features.ShortenerHosts = append(features.ShortenerHosts, host)
		}
	}

	return features
}

func (e *FeatureExtractor) extractFile(meta *models.FileMetadata) *models.FileFeatures {
	ext := strings.ToLower(filepath.Ext(meta.Name))
	class, ok := extensionClasses[ext]
	if !ok {
		class = models.FileClassOther
	}

	return &models.FileFeatures{
		Name:      meta.Name,
		Extension: ext,
		Class:     class,
		SizeBytes: meta.Size,
	}
}

// collectLinks merges explicitly supplied links with URLs found in the body
func collectLinks(msg *models.EmailMessage) []string {
	seen := make(map[string]bool)
	links := make([]string, 0, len(msg.Links))
	add := func(link string) {
		if link == "" || seen[link] {
			return
		}
		seen[link] = true
		links = append(links, link)
	}

	for _, link := range msg.Links {
		add(link)
	}
	for _, link := range linkPattern.FindAllString(msg.Content, -1) {
		add(link)
	}
	return links
}

func containsAny(text string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}
