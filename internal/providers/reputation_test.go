package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securiguard/internal/domain/models"
	"securiguard/pkg/logger"
)

func TestReputationBuiltinBlocklist(t *testing.T) {
	adapter := NewReputationAdapter(logger.Nop())

	t.Run("listed domain scores high", func(t *testing.T) {
		result, err := adapter.Query(context.Background(), models.NewURLTarget("https://phishing-test.com/login"))
		require.NoError(t, err)

		assert.True(t, result.Succeeded)
		require.NotNil(t, result.RawScore)
		assert.Equal(t, 95.0, *result.RawScore)
		assert.Equal(t, "phishing", result.Signals["category"])
	})

	t.Run("unlisted domain scores low", func(t *testing.T) {
		result, err := adapter.Query(context.Background(), models.NewURLTarget("https://example.com"))
		require.NoError(t, err)

		assert.True(t, result.Succeeded)
		require.NotNil(t, result.RawScore)
		assert.Equal(t, 5.0, *result.RawScore)
	})

	t.Run("file target has no domain", func(t *testing.T) {
		result, err := adapter.Query(context.Background(), models.NewFileTarget(models.FileMetadata{Name: "x.exe"}))
		assert.Error(t, err)
		assert.False(t, result.Succeeded)
	})
}

func TestReputationRemoteLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "bad.example", r.URL.Query().Get("domain"))
		fmt.Fprint(w, `{"listed":true,"category":"phishing","confidence":0.8}`)
	}))
	defer server.Close()

	adapter := NewReputationAdapter(logger.Nop())
	require.NoError(t, adapter.Configure(AdapterConfig{Enabled: true, Weight: 0.4, APIURL: server.URL}))

	result, err := adapter.Query(context.Background(), models.NewURLTarget("https://bad.example/a"))
	require.NoError(t, err)

	assert.True(t, result.Succeeded)
	require.NotNil(t, result.RawScore)
	assert.InDelta(t, 92.0, *result.RawScore, 0.001) // 60 + 0.8*40
}

func TestReputationRemoteFailureIsProviderFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	adapter := NewReputationAdapter(logger.Nop())
	require.NoError(t, adapter.Configure(AdapterConfig{Enabled: true, APIURL: server.URL}))

	result, err := adapter.Query(context.Background(), models.NewURLTarget("https://example.com"))
	assert.Error(t, err)
	assert.False(t, result.Succeeded)
}

func TestTargetDomain(t *testing.T) {
	urlDomain, ok := targetDomain(models.NewURLTarget("https://Sub.Example.COM/path"))
	require.True(t, ok)
	assert.Equal(t, "sub.example.com", urlDomain)

	emailDomain, ok := targetDomain(models.NewEmailTarget(models.EmailMessage{Sender: "alice@Corp.Example"}))
	require.True(t, ok)
	assert.Equal(t, "corp.example", emailDomain)

	_, ok = targetDomain(models.NewFileTarget(models.FileMetadata{Name: "a.zip"}))
	assert.False(t, ok)
}
