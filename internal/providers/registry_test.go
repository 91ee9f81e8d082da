package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securiguard/pkg/logger"
)

func TestRegistryPreservesRegistrationOrder(t *testing.T) {
	registry := NewRegistry(logger.Nop())

	require.NoError(t, registry.Register(NewReputationAdapter(logger.Nop())))
	require.NoError(t, registry.Register(NewSafeBrowsingAdapter(logger.Nop())))
	require.NoError(t, registry.Register(NewAIAnalystAdapter(logger.Nop())))
	require.NoError(t, registry.Register(NewDomainAgeAdapter(logger.Nop())))

	ids := make([]string, 0, 4)
	for _, adapter := range registry.List() {
		ids = append(ids, adapter.ID())
	}
	assert.Equal(t, []string{"reputation", "safebrowsing", "ai-analyst", "domain-age"}, ids)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	registry := NewRegistry(logger.Nop())

	require.NoError(t, registry.Register(NewReputationAdapter(logger.Nop())))
	assert.Error(t, registry.Register(NewReputationAdapter(logger.Nop())))
	assert.Equal(t, 1, registry.Count())
}

func TestRegistryWeightsAndEnabledFilter(t *testing.T) {
	registry := NewRegistry(logger.Nop())

	require.NoError(t, registry.Register(NewReputationAdapter(logger.Nop())))
	require.NoError(t, registry.Register(NewSafeBrowsingAdapter(logger.Nop())))

	require.NoError(t, registry.Configure("reputation", AdapterConfig{Enabled: true, Weight: 0.4}))
	require.NoError(t, registry.Configure("safebrowsing", AdapterConfig{Enabled: false, Weight: 0.3}))

	assert.Equal(t, 1, registry.CountEnabled())

	weights := registry.Weights()
	assert.Equal(t, map[string]float64{"reputation": 0.4}, weights)
}
