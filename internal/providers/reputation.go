package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"securiguard/internal/domain/models"
	"securiguard/pkg/logger"
)

// Domains with confirmed malicious history, consulted when no remote
// reputation API is configured.
var builtinBlocklist = map[string]string{
	"phishing-test.com":      "phishing",
	"malware-test.com":       "malware",
	"secure-paypal-login.tk": "phishing",
	"account-verify.xyz":     "phishing",
	"free-crypto-reward.top": "scam",
}

// ReputationAdapter checks targets against a domain reputation service.
// When an API URL is configured it queries the remote blocklist; otherwise it
// falls back to the built-in list so the provider still contributes offline.
type ReputationAdapter struct {
	*BaseAdapter
	client *http.Client
	logger *logger.Logger
}

type reputationResponse struct {
	Listed     bool    `json:"listed"`
	Category   string  `json:"category,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// NewReputationAdapter creates a new reputation adapter
func NewReputationAdapter(log *logger.Logger) *ReputationAdapter {
	return &ReputationAdapter{
		BaseAdapter: NewBaseAdapter("reputation", "Domain Reputation"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: log.WithProvider("reputation"),
	}
}

// Query checks the target's domain against the reputation service
func (a *ReputationAdapter) Query(ctx context.Context, target models.ScanTarget) (models.ProviderResult, error) {
	start := time.Now()

	domain, ok := targetDomain(target)
	if !ok {
		return models.FailedResult(a.ID(), time.Since(start)), fmt.Errorf("no domain to check for %s target", target.Kind)
	}

	if a.Config().APIURL == "" {
		return a.queryBuiltin(domain, start), nil
	}

	listed, category, confidence, err := a.queryRemote(ctx, domain)
	if err != nil {
		a.logger.Warn().Err(err).Str("domain", domain).Msg("Reputation lookup failed")
		return models.FailedResult(a.ID(), time.Since(start)), err
	}

	score := 5.0
	if listed {
		score = 60 + confidence*40
		if score > 100 {
			score = 100
		}
	}

	result := models.SucceededResult(a.ID(), score, time.Since(start))
	result.Signals = map[string]interface{}{
		"domain": domain,
		"listed": listed,
	}
	if category != "" {
		result.Signals["category"] = category
	}
	return result, nil
}

func (a *ReputationAdapter) queryBuiltin(domain string, start time.Time) models.ProviderResult {
	if category, listed := builtinBlocklist[domain]; listed {
		result := models.SucceededResult(a.ID(), 95, time.Since(start))
		result.Signals = map[string]interface{}{
			"domain":   domain,
			"listed":   true,
			"category": category,
		}
		return result
	}

	result := models.SucceededResult(a.ID(), 5, time.Since(start))
	result.Signals = map[string]interface{}{
		"domain": domain,
		"listed": false,
	}
	return result
}

func (a *ReputationAdapter) queryRemote(ctx context.Context, domain string) (bool, string, float64, error) {
	endpoint := fmt.Sprintf("%s?domain=%s", a.Config().APIURL, url.QueryEscape(domain))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, "", 0, fmt.Errorf("failed to create request: %w", err)
	}
	if key := a.Config().APIKey; key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return false, "", 0, fmt.Errorf("reputation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, "", 0, fmt.Errorf("reputation API returned status %d", resp.StatusCode)
	}

	var body reputationResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, "", 0, fmt.Errorf("failed to decode reputation response: %w", err)
	}

	return body.Listed, body.Category, body.Confidence, nil
}

// targetDomain extracts the domain a reputation lookup should use.
// URL targets use the host, email targets use the sender's domain.
// File targets carry no domain and cannot be looked up.
func targetDomain(target models.ScanTarget) (string, bool) {
	switch target.Kind {
	case models.TargetKindURL:
		parsed, err := url.Parse(target.URL)
		if err != nil || parsed.Hostname() == "" {
			return "", false
		}
		return strings.ToLower(parsed.Hostname()), true
	case models.TargetKindEmail:
		if target.Email == nil {
			return "", false
		}
		at := strings.LastIndex(target.Email.Sender, "@")
		if at < 0 || at == len(target.Email.Sender)-1 {
			return "", false
		}
		return strings.ToLower(target.Email.Sender[at+1:]), true
	default:
		return "", false
	}
}
