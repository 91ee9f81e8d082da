package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"securiguard/internal/domain/models"
	"securiguard/pkg/logger"
)

const (
	defaultLLMURL   = "https://api.openai.com/v1/chat/completions"
	defaultLLMModel = "gpt-4o-mini"
)

// Free-text model output is unreliable, so the score is extracted with a
// permissive pattern rather than asking for structured output.
var riskScorePattern = regexp.MustCompile(`(?i)risk\s*score\s*:?\s*(\d{1,3})`)

// AIAnalystAdapter asks a language model to assess the target and extracts a
// numeric risk score from its free-text answer. A reply the pattern cannot
// match is a provider failure, never an error surfaced to the caller.
type AIAnalystAdapter struct {
	*BaseAdapter
	client *http.Client
	logger *logger.Logger
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewAIAnalystAdapter creates a new AI analyst adapter
func NewAIAnalystAdapter(log *logger.Logger) *AIAnalystAdapter {
	return &AIAnalystAdapter{
		BaseAdapter: NewBaseAdapter("ai-analyst", "AI Analyst"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: log.WithProvider("ai-analyst"),
	}
}

// Query asks the language model for a risk assessment of the target
func (a *AIAnalystAdapter) Query(ctx context.Context, target models.ScanTarget) (models.ProviderResult, error) {
	start := time.Now()

	if a.Config().APIKey == "" {
		return models.FailedResult(a.ID(), time.Since(start)), fmt.Errorf("ai-analyst API key not configured")
	}

	prompt, ok := buildPrompt(target)
	if !ok {
		return models.FailedResult(a.ID(), time.Since(start)), fmt.Errorf("no prompt for %s target", target.Kind)
	}

	answer, err := a.complete(ctx, prompt)
	if err != nil {
		a.logger.Warn().Err(err).Msg("LLM request failed")
		return models.FailedResult(a.ID(), time.Since(start)), err
	}

	score, err := extractRiskScore(answer)
	if err != nil {
		a.logger.Warn().Err(err).Str("answer", truncate(answer, 200)).Msg("Could not extract risk score from LLM answer")
		return models.FailedResult(a.ID(), time.Since(start)), err
	}

	result := models.SucceededResult(a.ID(), score, time.Since(start))
	result.Signals = map[string]interface{}{
		"model":    a.model(),
		"analysis": truncate(answer, 500),
	}
	return result, nil
}

func (a *AIAnalystAdapter) complete(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: a.model(),
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: "You are a phishing and malware analyst. Assess the submitted artifact and reply with a short analysis ending in a line of the form 'Risk score: NN' where NN is 0-100.",
			},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.1,
		MaxTokens:   400,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := a.Config().APIURL
	if endpoint == "" {
		endpoint = defaultLLMURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.Config().APIKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("LLM request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("LLM API returned status %d", resp.StatusCode)
	}

	var body chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode LLM response: %w", err)
	}
	if body.Error != nil {
		return "", fmt.Errorf("LLM API error: %s", body.Error.Message)
	}
	if len(body.Choices) == 0 {
		return "", fmt.Errorf("LLM returned no choices")
	}

	return body.Choices[0].Message.Content, nil
}

func (a *AIAnalystAdapter) model() string {
	if m := a.Config().Model; m != "" {
		return m
	}
	return defaultLLMModel
}

// buildPrompt renders the target for the analyst prompt
func buildPrompt(target models.ScanTarget) (string, bool) {
	switch target.Kind {
	case models.TargetKindURL:
		return fmt.Sprintf("Assess this URL for phishing or malware risk:\n\n%s", target.URL), true
	case models.TargetKindEmail:
		if target.Email == nil {
			return "", false
		}
		var b strings.Builder
		b.WriteString("Assess this email for phishing risk.\n\n")
		fmt.Fprintf(&b, "From: %s\n", target.Email.Sender)
		fmt.Fprintf(&b, "Subject: %s\n\n", target.Email.Subject)
		b.WriteString(truncate(target.Email.Content, 2000))
		return b.String(), true
	case models.TargetKindFile:
		if target.File == nil {
			return "", false
		}
		return fmt.Sprintf("Assess this file for malware risk based on its metadata:\n\nName: %s\nSize: %d bytes\nMIME type: %s",
			target.File.Name, target.File.Size, target.File.Type), true
	default:
		return "", false
	}
}

// extractRiskScore pulls the numeric score out of a free-text analysis
func extractRiskScore(answer string) (float64, error) {
	match := riskScorePattern.FindStringSubmatch(answer)
	if match == nil {
		return 0, fmt.Errorf("no risk score found in answer")
	}

	score, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse risk score %q: %w", match[1], err)
	}
	if score < 0 || score > 100 {
		return 0, fmt.Errorf("risk score %v out of range", score)
	}
	return score, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
