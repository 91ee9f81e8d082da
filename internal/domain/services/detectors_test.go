package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securiguard/internal/domain/models"
	"securiguard/pkg/logger"
)

func detectURL(t *testing.T, rawURL string) []models.Indicator {
	t.Helper()
	extractor := NewFeatureExtractor(logger.Nop())
	fs, err := extractor.Extract(models.NewURLTarget(rawURL))
	require.NoError(t, err)
	return NewHeuristicDetectors(logger.Nop()).Detect(fs)
}

func indicatorKinds(indicators []models.Indicator) []models.IndicatorKind {
	kinds := make([]models.IndicatorKind, 0, len(indicators))
	for _, indicator := range indicators {
		kinds = append(kinds, indicator.Kind)
	}
	return kinds
}

func TestTyposquatIndicator(t *testing.T) {
	assert.Contains(t, indicatorKinds(detectURL(t, "https://go0gle.com")), models.IndicatorTyposquatting)
	assert.NotContains(t, indicatorKinds(detectURL(t, "https://google.com")), models.IndicatorTyposquatting)
}

func TestIPAddressLoginURL(t *testing.T) {
	kinds := indicatorKinds(detectURL(t, "http://192.168.1.1/login"))

	assert.Contains(t, kinds, models.IndicatorIPAddress)
	assert.Contains(t, kinds, models.IndicatorLoginKeywords)
	assert.Contains(t, kinds, models.IndicatorNoTLS)
	assert.NotContains(t, kinds, models.IndicatorTyposquatting)
}

func TestSuspiciousTLDIndicator(t *testing.T) {
	assert.Contains(t, indicatorKinds(detectURL(t, "https://free-reward.xyz")), models.IndicatorSuspiciousTLD)
	assert.NotContains(t, indicatorKinds(detectURL(t, "https://example.com")), models.IndicatorSuspiciousTLD)
}

func TestBenignURLHasNoIndicators(t *testing.T) {
	assert.Empty(t, detectURL(t, "https://example.com"))
}

func TestDetectionIsDeterministic(t *testing.T) {
	first := detectURL(t, "http://payments.acc0unt.verify.example.xyz/login?next=secure")
	second := detectURL(t, "http://payments.acc0unt.verify.example.xyz/login?next=secure")

	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestEachRuleFiresAtMostOnce(t *testing.T) {
	// Multiple login keywords in one URL still yield a single indicator
	indicators := detectURL(t, "https://login.example.com/signin/auth")

	count := 0
	for _, indicator := range indicators {
		if indicator.Kind == models.IndicatorLoginKeywords {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestEmailIndicators(t *testing.T) {
	extractor := NewFeatureExtractor(logger.Nop())
	detectors := NewHeuristicDetectors(logger.Nop())

	fs, err := extractor.Extract(models.NewEmailTarget(models.EmailMessage{
		Subject: "Re: your account",
		Sender:  "security@mailer.example",
		Content: "Act now and confirm your identity. Send your password via https://tinyurl.com/a1",
	}))
	require.NoError(t, err)

	kinds := indicatorKinds(detectors.Detect(fs))
	assert.Contains(t, kinds, models.IndicatorCredentialRequest)
	assert.Contains(t, kinds, models.IndicatorUrgencyLanguage)
	assert.Contains(t, kinds, models.IndicatorSubjectPattern)
	assert.Contains(t, kinds, models.IndicatorLinkShortener)
	assert.Contains(t, kinds, models.IndicatorSuspiciousSender)
}

func TestFileIndicators(t *testing.T) {
	extractor := NewFeatureExtractor(logger.Nop())
	detectors := NewHeuristicDetectors(logger.Nop())

	t.Run("large executable", func(t *testing.T) {
		fs, err := extractor.Extract(models.NewFileTarget(models.FileMetadata{
			Name: "installer.exe",
			Size: 50 * 1024 * 1024,
		}))
		require.NoError(t, err)

		kinds := indicatorKinds(detectors.Detect(fs))
		assert.Contains(t, kinds, models.IndicatorExecutableFile)
		assert.Contains(t, kinds, models.IndicatorOversizedFile)
	})

	t.Run("small document", func(t *testing.T) {
		fs, err := extractor.Extract(models.NewFileTarget(models.FileMetadata{
			Name: "notes.docx",
			Size: 2048,
		}))
		require.NoError(t, err)
		assert.Empty(t, detectors.Detect(fs))
	})
}

func TestIndicatorDeltasArePositive(t *testing.T) {
	for _, indicator := range detectURL(t, "http://192.168.1.1/login") {
		assert.Positive(t, indicator.ScoreDelta, "indicator %s", indicator.Kind)
		assert.Greater(t, indicator.Confidence, 0.0)
		assert.LessOrEqual(t, indicator.Confidence, 1.0)
	}
}
