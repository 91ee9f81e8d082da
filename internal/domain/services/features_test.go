package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securiguard/internal/domain/models"
	"securiguard/pkg/logger"
)

func TestExtractURLFeatures(t *testing.T) {
	extractor := NewFeatureExtractor(logger.Nop())

	t.Run("plain https url", func(t *testing.T) {
		fs, err := extractor.Extract(models.NewURLTarget("https://www.example.com/about"))
		require.NoError(t, err)
		require.NotNil(t, fs.URL)

		assert.Equal(t, "www.example.com", fs.URL.Host)
		assert.Equal(t, "example", fs.URL.HostLabel)
		assert.Equal(t, ".com", fs.URL.TLD)
		assert.Equal(t, 1, fs.URL.SubdomainDepth)
		assert.Equal(t, 1, fs.URL.PathSegmentCount)
		assert.True(t, fs.URL.UsesTLS)
		assert.False(t, fs.URL.IsIPAddress)
		assert.False(t, fs.URL.HasQueryParams)
	})

	t.Run("ip address login page", func(t *testing.T) {
		fs, err := extractor.Extract(models.NewURLTarget("http://192.168.1.1/login"))
		require.NoError(t, err)

		assert.True(t, fs.URL.IsIPAddress)
		assert.False(t, fs.URL.UsesTLS)
		assert.Equal(t, "/login", fs.URL.Path)
		assert.Empty(t, fs.URL.TLD)
	})

	t.Run("deep subdomains and query", func(t *testing.T) {
		fs, err := extractor.Extract(models.NewURLTarget("https://a.b.c.example.com/x/y?id=1"))
		require.NoError(t, err)

		assert.Equal(t, 3, fs.URL.SubdomainDepth)
		assert.Equal(t, 2, fs.URL.PathSegmentCount)
		assert.True(t, fs.URL.HasQueryParams)
	})

	t.Run("special characters", func(t *testing.T) {
		fs, err := extractor.Extract(models.NewURLTarget("https://example.com/pay$ment"))
		require.NoError(t, err)
		assert.True(t, fs.URL.HasSpecialChars)
	})

	t.Run("scheme-less url gets https assumed", func(t *testing.T) {
		fs, err := extractor.Extract(models.NewURLTarget("example.com/login"))
		require.NoError(t, err)
		assert.Equal(t, "example.com", fs.URL.Host)
		assert.True(t, fs.URL.UsesTLS)
	})

	t.Run("unparseable url is malformed", func(t *testing.T) {
		_, err := extractor.Extract(models.NewURLTarget("http://[::1"))
		assert.ErrorIs(t, err, ErrMalformedTarget)
	})

	t.Run("empty url is malformed", func(t *testing.T) {
		_, err := extractor.Extract(models.NewURLTarget("   "))
		assert.ErrorIs(t, err, ErrMalformedTarget)
	})
}

func TestExtractEmailFeatures(t *testing.T) {
	extractor := NewFeatureExtractor(logger.Nop())

	t.Run("phishing email fires the expected flags", func(t *testing.T) {
		fs, err := extractor.Extract(models.NewEmailTarget(models.EmailMessage{
			Subject: "Verification required: suspicious activity",
			Sender:  "no-reply@secure-mail.example",
			Content: "Urgent: verify your account within 24 hours or payment will fail. Click https://bit.ly/x1 now.",
		}))
		require.NoError(t, err)
		require.NotNil(t, fs.Email)

		assert.Equal(t, "secure-mail.example", fs.Email.SenderDomain)
		assert.True(t, fs.Email.SuspiciousSender)
		assert.True(t, fs.Email.HasUrgencyLanguage)
		assert.True(t, fs.Email.HasFinancialKeywords)
		assert.True(t, fs.Email.RequestsCredentials)
		assert.NotEmpty(t, fs.Email.SubjectMatches)
		assert.Equal(t, []string{"bit.ly"}, fs.Email.ShortenerHosts)
		assert.Equal(t, 1, fs.Email.LinkCount)
	})

	t.Run("benign email stays quiet", func(t *testing.T) {
		fs, err := extractor.Extract(models.NewEmailTarget(models.EmailMessage{
			Subject: "Lunch on Friday?",
			Sender:  "alice@example.com",
			Content: "Shall we try the new place around the corner?",
		}))
		require.NoError(t, err)

		assert.False(t, fs.Email.SuspiciousSender)
		assert.False(t, fs.Email.HasUrgencyLanguage)
		assert.False(t, fs.Email.RequestsCredentials)
		assert.Empty(t, fs.Email.SubjectMatches)
		assert.Zero(t, fs.Email.LinkCount)
	})

	t.Run("malformed links are collected", func(t *testing.T) {
		fs, err := extractor.Extract(models.NewEmailTarget(models.EmailMessage{
			Subject: "links",
			Sender:  "bob@example.com",
			Links:   []string{"::not-a-url", "https://example.com/ok"},
		}))
		require.NoError(t, err)

		assert.Equal(t, []string{"::not-a-url"}, fs.Email.MalformedLinks)
		assert.Equal(t, 2, fs.Email.LinkCount)
	})

	t.Run("missing sender is malformed", func(t *testing.T) {
		_, err := extractor.Extract(models.NewEmailTarget(models.EmailMessage{Subject: "x"}))
		assert.ErrorIs(t, err, ErrMalformedTarget)
	})
}

func TestExtractFileFeatures(t *testing.T) {
	extractor := NewFeatureExtractor(logger.Nop())

	tests := []struct {
		name  string
		class models.FileClass
	}{
		{"setup.exe", models.FileClassExecutable},
		{"payload.SCR", models.FileClassExecutable},
		{"macro.js", models.FileClassScript},
		{"report.pdf", models.FileClassDocument},
		{"bundle.zip", models.FileClassArchive},
		{"photo.png", models.FileClassImage},
		{"README", models.FileClassOther},
		{"data.xyz123", models.FileClassOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs, err := extractor.Extract(models.NewFileTarget(models.FileMetadata{Name: tt.name, Size: 100}))
			require.NoError(t, err)
			require.NotNil(t, fs.File)
			assert.Equal(t, tt.class, fs.File.Class)
		})
	}

	t.Run("missing name is malformed", func(t *testing.T) {
		_, err := extractor.Extract(models.NewFileTarget(models.FileMetadata{Size: 100}))
		assert.ErrorIs(t, err, ErrMalformedTarget)
	})
}
