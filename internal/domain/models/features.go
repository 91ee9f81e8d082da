package models

// FileClass is the coarse classification of a file by extension
type FileClass string

const (
	FileClassExecutable FileClass = "executable"
	FileClassScript     FileClass = "script"
	FileClassDocument   FileClass = "document"
	FileClassArchive    FileClass = "archive"
	FileClassImage      FileClass = "image"
	FileClassOther      FileClass = "other"
)

// URLFeatures holds the structural features of a URL target
type URLFeatures struct {
	Scheme           string `json:"scheme"`
	Host             string `json:"host"`
	HostLabel        string `json:"host_label"` // left-most label, used for brand matching
	TLD              string `json:"tld"`
	Path             string `json:"path"`
	PathSegmentCount int    `json:"path_segment_count"`
	HasQueryParams   bool   `json:"has_query_params"`
	HasSpecialChars  bool   `json:"has_special_chars"`
	IsIPAddress      bool   `json:"is_ip_address"`
	SubdomainDepth   int    `json:"subdomain_depth"`
	UsesTLS          bool   `json:"uses_tls"`
}

// EmailFeatures holds the structural features of an email target
type EmailFeatures struct {
	SenderDomain         string   `json:"sender_domain"`
	HasSenderDomain      bool     `json:"has_sender_domain"`
	SuspiciousSender     bool     `json:"suspicious_sender"`
	HasUrgencyLanguage   bool     `json:"has_urgency_language"`
	HasFinancialKeywords bool     `json:"has_financial_keywords"`
	RequestsCredentials  bool     `json:"requests_credentials"`
	SubjectMatches       []string `json:"subject_matches,omitempty"` // matched suspicious subject phrases
	ShortenerHosts       []string `json:"shortener_hosts,omitempty"` // link-shortener domains seen in links
	MalformedLinks       []string `json:"malformed_links,omitempty"` // link strings that failed URL parsing
	LinkCount            int      `json:"link_count"`
}

// FileFeatures holds the structural features of a file target
type FileFeatures struct {
	Name      string    `json:"name"`
	Extension string    `json:"extension"`
	Class     FileClass `json:"class"`
	SizeBytes int64     `json:"size_bytes"`
}

// FeatureSet is the variant-specific feature mapping produced once per target.
// Exactly one of URL, Email, File is set, matching Kind. Immutable after extraction.
type FeatureSet struct {
	Kind  TargetKind     `json:"kind"`
	URL   *URLFeatures   `json:"url,omitempty"`
	Email *EmailFeatures `json:"email,omitempty"`
	File  *FileFeatures  `json:"file,omitempty"`
}
