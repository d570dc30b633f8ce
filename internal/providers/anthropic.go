package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	AnthropicName    = "anthropic"
	AnthropicBaseURL = "https://api.anthropic.com"
	AnthropicModel   = "claude-sonnet-4-20250514"

	anthropicVersion = "2023-06-01"
)

// AnthropicConfig holds configuration for the Anthropic text corrector.
type AnthropicConfig struct {
	APIKey    string
	BaseURL   string // Optional (tests)
	Model     string
	MaxTokens int
	Timeout   time.Duration
	Logger    *slog.Logger
}

// AnthropicCorrector implements TextCorrector using the Anthropic
// messages API.
type AnthropicCorrector struct {
	apiKey    string
	baseURL   string
	model     string
	maxTokens int
	client    *http.Client
	logger    *slog.Logger
}

// NewAnthropicCorrector creates a new Anthropic corrector, filling defaults.
func NewAnthropicCorrector(cfg AnthropicConfig) *AnthropicCorrector {
	if cfg.BaseURL == "" {
		cfg.BaseURL = AnthropicBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = AnthropicModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2000
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &AnthropicCorrector{
		apiKey:    cfg.APIKey,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: cfg.Logger,
	}
}

// Name returns the provider identifier.
func (c *AnthropicCorrector) Name() string {
	return AnthropicName
}

// CorrectTexts sends the texts as one numbered batch and returns the
// corrected items parsed from the response, in response order. The
// caller decides what to do when the count differs from the input.
func (c *AnthropicCorrector) CorrectTexts(ctx context.Context, texts []string, slideContext string) ([]string, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is not set")
	}

	requestID := uuid.New().String()
	c.logger.Debug("anthropic correction request",
		"request_id", requestID, "model", c.model, "texts", len(texts))

	reqBody := anthropicRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []anthropicMessage{
			{Role: "user", Content: correctionPrompt(texts, slideContext)},
		},
	}

	resp, err := c.doRequest(ctx, reqBody)
	if err != nil {
		c.logger.Debug("anthropic correction request failed", "request_id", requestID, "error", err)
		return nil, err
	}

	text := resp.text()
	if text == "" {
		return nil, fmt.Errorf("anthropic returned no text content")
	}

	items := ParseNumberedList(text)
	c.logger.Debug("anthropic correction response",
		"request_id", requestID, "message_id", resp.ID, "items", len(items))
	return items, nil
}

// doRequest makes a messages API call and decodes the response.
func (c *AnthropicCorrector) doRequest(ctx context.Context, body anthropicRequest) (*anthropicResponse, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/messages", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitError{
			Provider:   AnthropicName,
			StatusCode: resp.StatusCode,
			Message:    anthropicErrorMessage(respBody),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}
	if resp.StatusCode != http.StatusOK {
		if msg := anthropicErrorMessage(respBody); msg != "" {
			return nil, fmt.Errorf("anthropic error (status %d): %s", resp.StatusCode, msg)
		}
		return nil, fmt.Errorf("anthropic error (status %d): %s", resp.StatusCode, truncate(string(respBody), 500))
	}

	var msgResp anthropicResponse
	if err := json.Unmarshal(respBody, &msgResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &msgResp, nil
}

func anthropicErrorMessage(body []byte) string {
	var errResp anthropicErrorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		if errResp.Error.Type != "" {
			return fmt.Sprintf("%s: %s", errResp.Error.Type, errResp.Error.Message)
		}
		return errResp.Error.Message
	}
	return ""
}

// Anthropic API types

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	ID         string                  `json:"id"`
	Content    []anthropicContentBlock `json:"content"`
	StopReason string                  `json:"stop_reason,omitempty"`
}

type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicErrorResponse struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// text joins the text blocks of the response.
func (r *anthropicResponse) text() string {
	var b strings.Builder
	for _, block := range r.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

// Verify interface
var _ TextCorrector = (*AnthropicCorrector)(nil)
