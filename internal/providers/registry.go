package providers

import (
	"fmt"
	"sync"

	"securiguard/internal/config"
	"securiguard/pkg/logger"
)

// Registry manages all registered provider adapters. Registration order is
// preserved: List and Weights iterate adapters in the order they were
// registered, which fixes the provider ordering in every scan's audit trail.
type Registry struct {
	mu       sync.RWMutex
	order    []Adapter
	adapters map[string]Adapter
	logger   *logger.Logger
}

// NewRegistry creates a new adapter registry
func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{
		order:    make([]Adapter, 0),
		adapters: make(map[string]Adapter),
		logger:   log.WithComponent("provider-registry"),
	}
}

// Register adds an adapter to the registry
func (r *Registry) Register(adapter Adapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := adapter.ID()
	if _, exists := r.adapters[id]; exists {
		return fmt.Errorf("adapter %s already registered", id)
	}

	r.adapters[id] = adapter
	r.order = append(r.order, adapter)
	r.logger.Info().
		Str("provider", id).
		Str("name", adapter.Name()).
		Msg("Provider registered")

	return nil
}

// Get retrieves an adapter by ID
func (r *Registry) Get(id string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, exists := r.adapters[id]
	if !exists {
		return nil, fmt.Errorf("adapter %s not found", id)
	}
	return adapter, nil
}

// List returns all registered adapters in registration order
func (r *Registry) List() []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapters := make([]Adapter, len(r.order))
	copy(adapters, r.order)
	return adapters
}

// ListEnabled returns all enabled adapters in registration order
func (r *Registry) ListEnabled() []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	enabled := make([]Adapter, 0, len(r.order))
	for _, adapter := range r.order {
		if adapter.IsEnabled() {
			enabled = append(enabled, adapter)
		}
	}
	return enabled
}

// Weights returns the nominal fusion weight of every enabled adapter by ID
func (r *Registry) Weights() map[string]float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	weights := make(map[string]float64, len(r.order))
	for _, adapter := range r.order {
		if adapter.IsEnabled() {
			weights[adapter.ID()] = adapter.Weight()
		}
	}
	return weights
}

// Count returns the number of registered adapters
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.adapters)
}

// CountEnabled returns the number of enabled adapters
func (r *Registry) CountEnabled() int {
	return len(r.ListEnabled())
}

// Configure configures an adapter by ID
func (r *Registry) Configure(id string, cfg AdapterConfig) error {
	adapter, err := r.Get(id)
	if err != nil {
		return err
	}

	if err := adapter.Configure(cfg); err != nil {
		return fmt.Errorf("failed to configure adapter %s: %w", id, err)
	}

	r.logger.Info().
		Str("provider", id).
		Bool("enabled", cfg.Enabled).
		Float64("weight", cfg.Weight).
		Msg("Provider configured")

	return nil
}

// ConfigureFromProvidersConfig configures all adapters from application config
func (r *Registry) ConfigureFromProvidersConfig(cfg *config.ProvidersConfig) error {
	sections := map[string]config.ProviderConfig{
		"reputation":   cfg.Reputation,
		"safebrowsing": cfg.SafeBrowsing,
		"ai-analyst":   cfg.AIAnalyst,
		"domain-age":   cfg.DomainAge,
	}

	for id, section := range sections {
		if _, err := r.Get(id); err != nil {
			continue
		}

		adapterCfg := AdapterConfig{
			Enabled: section.Enabled,
			Weight:  section.Weight,
			Timeout: section.Timeout,
			APIURL:  section.APIURL,
			APIKey:  section.APIKey,
			Model:   section.Model,
		}

		if err := r.Configure(id, adapterCfg); err != nil {
			r.logger.Warn().Err(err).Str("provider", id).Msg("Failed to configure provider")
		}
	}

	return nil
}
