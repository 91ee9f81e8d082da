package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"securiguard/internal/domain/models"
	"securiguard/pkg/logger"
)

const defaultSafeBrowsingURL = "https://safebrowsing.googleapis.com/v4/threatMatches:find"

// SafeBrowsingAdapter checks URLs against the Google Safe Browsing v4
// Lookup API. Email targets are checked link by link; the worst match wins.
type SafeBrowsingAdapter struct {
	*BaseAdapter
	client *http.Client
	logger *logger.Logger
}

type safeBrowsingRequest struct {
	Client struct {
		ClientID      string `json:"clientId"`
		ClientVersion string `json:"clientVersion"`
	} `json:"client"`
	ThreatInfo struct {
		ThreatTypes      []string           `json:"threatTypes"`
		PlatformTypes    []string           `json:"platformTypes"`
		ThreatEntryTypes []string           `json:"threatEntryTypes"`
		ThreatEntries    []threatEntry      `json:"threatEntries"`
	} `json:"threatInfo"`
}

type threatEntry struct {
	URL string `json:"url"`
}

type safeBrowsingResponse struct {
	Matches []struct {
		ThreatType string `json:"threatType"`
		Threat     struct {
			URL string `json:"url"`
		} `json:"threat"`
	} `json:"matches"`
}

// NewSafeBrowsingAdapter creates a new safe browsing adapter
func NewSafeBrowsingAdapter(log *logger.Logger) *SafeBrowsingAdapter {
	adapter := &SafeBrowsingAdapter{
		BaseAdapter: NewBaseAdapter("safebrowsing", "Safe Browsing"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: log.WithProvider("safebrowsing"),
	}
	return adapter
}

// Query checks the target's URLs against the Safe Browsing API
func (a *SafeBrowsingAdapter) Query(ctx context.Context, target models.ScanTarget) (models.ProviderResult, error) {
	start := time.Now()

	if a.Config().APIKey == "" {
		return models.FailedResult(a.ID(), time.Since(start)), fmt.Errorf("safebrowsing API key not configured")
	}

	urls := targetURLs(target)
	if len(urls) == 0 {
		return models.FailedResult(a.ID(), time.Since(start)), fmt.Errorf("no URLs to check for %s target", target.Kind)
	}

	matches, err := a.lookup(ctx, urls)
	if err != nil {
		a.logger.Warn().Err(err).Int("urls", len(urls)).Msg("Safe browsing lookup failed")
		return models.FailedResult(a.ID(), time.Since(start)), err
	}

	score := 0.0
	threatTypes := make([]string, 0, len(matches.Matches))
	for _, match := range matches.Matches {
		threatTypes = append(threatTypes, match.ThreatType)
	}
	if len(matches.Matches) > 0 {
		score = 95
	}

	result := models.SucceededResult(a.ID(), score, time.Since(start))
	result.Signals = map[string]interface{}{
		"urls_checked": len(urls),
		"matches":      len(matches.Matches),
	}
	if len(threatTypes) > 0 {
		result.Signals["threat_types"] = threatTypes
	}
	return result, nil
}

func (a *SafeBrowsingAdapter) lookup(ctx context.Context, urls []string) (*safeBrowsingResponse, error) {
	var reqBody safeBrowsingRequest
	reqBody.Client.ClientID = "securiguard"
	reqBody.Client.ClientVersion = "1.0"
	reqBody.ThreatInfo.ThreatTypes = []string{"MALWARE", "SOCIAL_ENGINEERING", "UNWANTED_SOFTWARE"}
	reqBody.ThreatInfo.PlatformTypes = []string{"ANY_PLATFORM"}
	reqBody.ThreatInfo.ThreatEntryTypes = []string{"URL"}
	for _, u := range urls {
		reqBody.ThreatInfo.ThreatEntries = append(reqBody.ThreatInfo.ThreatEntries, threatEntry{URL: u})
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := a.Config().APIURL
	if endpoint == "" {
		endpoint = defaultSafeBrowsingURL
	}
	endpoint = endpoint + "?key=" + a.Config().APIKey

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("safebrowsing request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("safebrowsing API returned status %d", resp.StatusCode)
	}

	var body safeBrowsingResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode safebrowsing response: %w", err)
	}
	return &body, nil
}

// targetURLs collects the URLs a link-based lookup should check
func targetURLs(target models.ScanTarget) []string {
	switch target.Kind {
	case models.TargetKindURL:
		return []string{target.URL}
	case models.TargetKindEmail:
		if target.Email == nil {
			return nil
		}
		return target.Email.Links
	default:
		return nil
	}
}
