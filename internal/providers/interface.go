package providers

import (
	"context"
	"time"

	"securiguard/internal/domain/models"
)

// Adapter defines the interface for external threat intelligence providers.
//
// Query must respect ctx's deadline and must never let a failure escape the
// adapter boundary: every failure mode is represented as a ProviderResult with
// Succeeded=false and no RawScore. The returned error is advisory, for logging
// only. Adapters are idempotent and side-effect-free from the caller's view.
type Adapter interface {
	// ID returns the unique identifier for this provider
	ID() string

	// Name returns the human-readable name of this provider
	Name() string

	// IsEnabled returns whether this provider is enabled
	IsEnabled() bool

	// Weight returns the nominal fusion weight of this provider
	Weight() float64

	// Timeout returns the per-query timeout for this provider
	Timeout() time.Duration

	// Query asks the provider for a 0-100 risk score for the target
	Query(ctx context.Context, target models.ScanTarget) (models.ProviderResult, error)

	// Configure configures the adapter with the given config
	Configure(cfg AdapterConfig) error
}

// AdapterConfig holds configuration for an adapter
type AdapterConfig struct {
	Enabled bool          `json:"enabled"`
	Weight  float64       `json:"weight"`
	Timeout time.Duration `json:"timeout,omitempty"`
	APIURL  string        `json:"api_url,omitempty"`
	APIKey  string        `json:"api_key,omitempty"`
	Model   string        `json:"model,omitempty"`
}

// DefaultConfig returns default adapter configuration
func DefaultConfig() AdapterConfig {
	return AdapterConfig{
		Enabled: true,
		Weight:  0.1,
		Timeout: 10 * time.Second,
	}
}

// BaseAdapter provides common functionality for adapters
type BaseAdapter struct {
	id     string
	name   string
	config AdapterConfig
}

// NewBaseAdapter creates a new base adapter
func NewBaseAdapter(id, name string) *BaseAdapter {
	return &BaseAdapter{
		id:     id,
		name:   name,
		config: DefaultConfig(),
	}
}

// ID returns the unique identifier for this provider
func (a *BaseAdapter) ID() string {
	return a.id
}

// Name returns the human-readable name of this provider
func (a *BaseAdapter) Name() string {
	return a.name
}

// IsEnabled returns whether this provider is enabled
func (a *BaseAdapter) IsEnabled() bool {
	return a.config.Enabled
}

// Weight returns the nominal fusion weight of this provider
func (a *BaseAdapter) Weight() float64 {
	return a.config.Weight
}

// Timeout returns the per-query timeout for this provider
func (a *BaseAdapter) Timeout() time.Duration {
	return a.config.Timeout
}

// Configure configures the adapter
func (a *BaseAdapter) Configure(cfg AdapterConfig) error {
	if cfg.Timeout == 0 {
		cfg.Timeout = a.config.Timeout
	}
	a.config = cfg
	return nil
}

// Config returns the current configuration
func (a *BaseAdapter) Config() AdapterConfig {
	return a.config
}
