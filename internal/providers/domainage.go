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

const defaultRDAPURL = "https://rdap.org/domain/"

// DomainAgeAdapter profiles a domain's registration age via RDAP. Freshly
// registered domains are the usual phishing vehicle, so young age maps to a
// high raw score; a plain-HTTP scheme adds a small penalty on top.
type DomainAgeAdapter struct {
	*BaseAdapter
	client *http.Client
	logger *logger.Logger
	now    func() time.Time
}

type rdapResponse struct {
	Events []struct {
		EventAction string    `json:"eventAction"`
		EventDate   time.Time `json:"eventDate"`
	} `json:"events"`
}

// NewDomainAgeAdapter creates a new domain age adapter
func NewDomainAgeAdapter(log *logger.Logger) *DomainAgeAdapter {
	return &DomainAgeAdapter{
		BaseAdapter: NewBaseAdapter("domain-age", "Domain Age"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: log.WithProvider("domain-age"),
		now:    time.Now,
	}
}

// Query looks up the target domain's registration date and scores its age
func (a *DomainAgeAdapter) Query(ctx context.Context, target models.ScanTarget) (models.ProviderResult, error) {
	start := time.Now()

	domain, ok := targetDomain(target)
	if !ok {
		return models.FailedResult(a.ID(), time.Since(start)), fmt.Errorf("no domain to profile for %s target", target.Kind)
	}

	registered, err := a.registrationDate(ctx, domain)
	if err != nil {
		a.logger.Warn().Err(err).Str("domain", domain).Msg("RDAP lookup failed")
		return models.FailedResult(a.ID(), time.Since(start)), err
	}

	age := a.now().Sub(registered)
	score := scoreForAge(age)

	if target.Kind == models.TargetKindURL && !strings.HasPrefix(strings.ToLower(target.URL), "https://") {
		score += 10
		if score > 100 {
			score = 100
		}
	}

	result := models.SucceededResult(a.ID(), score, time.Since(start))
	result.Signals = map[string]interface{}{
		"domain":        domain,
		"registered_at": registered.Format(time.RFC3339),
		"age_days":      int(age.Hours() / 24),
	}
	return result, nil
}

func (a *DomainAgeAdapter) registrationDate(ctx context.Context, domain string) (time.Time, error) {
	base := a.Config().APIURL
	if base == "" {
		base = defaultRDAPURL
	}
	endpoint := base + url.PathEscape(domain)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/rdap+json")

	resp, err := a.client.Do(req)
	if err != nil {
		return time.Time{}, fmt.Errorf("RDAP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return time.Time{}, fmt.Errorf("RDAP returned status %d for %s", resp.StatusCode, domain)
	}

	var body rdapResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return time.Time{}, fmt.Errorf("failed to decode RDAP response: %w", err)
	}

	for _, event := range body.Events {
		if event.EventAction == "registration" {
			return event.EventDate, nil
		}
	}
	return time.Time{}, fmt.Errorf("no registration event for %s", domain)
}

// scoreForAge maps registration age to a raw risk score
func scoreForAge(age time.Duration) float64 {
	days := age.Hours() / 24
	switch {
	case days < 30:
		return 85
	case days < 180:
		return 65
	case days < 365:
		return 45
	default:
		return 15
	}
}
