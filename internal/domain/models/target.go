package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// TargetKind represents the kind of scan target
type TargetKind string

const (
	TargetKindURL   TargetKind = "url"
	TargetKindEmail TargetKind = "email"
	TargetKindFile  TargetKind = "file"
)

// EmailMessage holds the fields of an email submitted for scanning
type EmailMessage struct {
	Subject string   `json:"subject"`
	Sender  string   `json:"sender"`
	Content string   `json:"content"`
	Links   []string `json:"links,omitempty"`
}

// FileMetadata holds the metadata of a file submitted for scanning.
// Only metadata crosses the scan boundary, never file contents.
type FileMetadata struct {
	Name string `json:"name"`
	Type string `json:"type"` // MIME type as reported by the caller
	Size int64  `json:"size"`
}

// ScanTarget is a tagged union over the three scannable kinds.
// Targets are immutable once created; build them with the New*Target constructors.
type ScanTarget struct {
	Kind  TargetKind    `json:"kind"`
	URL   string        `json:"url,omitempty"`
	Email *EmailMessage `json:"email,omitempty"`
	File  *FileMetadata `json:"file,omitempty"`

	fingerprint string
}

// NewURLTarget creates a URL scan target
func NewURLTarget(rawURL string) ScanTarget {
	t := ScanTarget{Kind: TargetKindURL, URL: rawURL}
	t.fingerprint = "url:" + normalizeURL(rawURL)
	return t
}

// NewEmailTarget creates an email scan target
func NewEmailTarget(msg EmailMessage) ScanTarget {
	t := ScanTarget{Kind: TargetKindEmail, Email: &msg}
	sum := sha256.Sum256([]byte(msg.Subject + "\x00" + msg.Sender + "\x00" + msg.Content))
	t.fingerprint = "email:" + hex.EncodeToString(sum[:])
	return t
}

// NewFileTarget creates a file scan target
func NewFileTarget(meta FileMetadata) ScanTarget {
	t := ScanTarget{Kind: TargetKindFile, File: &meta}
	t.fingerprint = fmt.Sprintf("file:%s:%d:%s", strings.ToLower(meta.Name), meta.Size, strings.ToLower(meta.Type))
	return t
}

// Fingerprint returns the stable cache/dedup key for this target.
// Two targets with the same normalized content always share a fingerprint.
func (t ScanTarget) Fingerprint() string {
	return t.fingerprint
}

// normalizeURL lower-cases a URL and strips the trailing slash so that
// trivially-different spellings of the same address coalesce.
func normalizeURL(rawURL string) string {
	u := strings.ToLower(strings.TrimSpace(rawURL))
	return strings.TrimSuffix(u, "/")
}

// String returns the string representation of TargetKind
func (k TargetKind) String() string {
	return string(k)
}

// ParseTargetKind parses a string into TargetKind
func ParseTargetKind(s string) (TargetKind, bool) {
	switch s {
	case "url":
		return TargetKindURL, true
	case "email":
		return TargetKindEmail, true
	case "file":
		return TargetKindFile, true
	default:
		return "", false
	}
}
