package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	OpenAIName  = "openai"
	OpenAIModel = "gpt-4o-mini"
)

// OpenAIConfig holds configuration for the OpenAI text corrector.
type OpenAIConfig struct {
	APIKey    string
	BaseURL   string // Optional (tests)
	Model     string
	MaxTokens int
	Timeout   time.Duration
	Logger    *slog.Logger
}

// OpenAICorrector implements TextCorrector using the OpenAI chat
// completions API.
type OpenAICorrector struct {
	client    openai.Client
	model     string
	maxTokens int
	logger    *slog.Logger
}

// NewOpenAICorrector creates a new OpenAI corrector, filling defaults.
func NewOpenAICorrector(cfg OpenAIConfig) *OpenAICorrector {
	if cfg.Model == "" {
		cfg.Model = OpenAIModel
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

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAICorrector{
		client:    openai.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    cfg.Logger,
	}
}

// Name returns the provider identifier.
func (c *OpenAICorrector) Name() string {
	return OpenAIName
}

// CorrectTexts sends the texts as one numbered batch and returns the
// corrected items parsed from the response, in response order. The
// caller decides what to do when the count differs from the input.
func (c *OpenAICorrector) CorrectTexts(ctx context.Context, texts []string, slideContext string) ([]string, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	requestID := uuid.New().String()
	c.logger.Debug("openai correction request",
		"request_id", requestID, "model", c.model, "texts", len(texts))

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(correctionPrompt(texts, slideContext)),
		},
		MaxTokens:   openai.Int(int64(c.maxTokens)),
		Temperature: openai.Float(0.1),
	})
	if err != nil {
		c.logger.Debug("openai correction request failed", "request_id", requestID, "error", err)
		return nil, mapOpenAIError(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("openai returned no text content")
	}

	items := ParseNumberedList(resp.Choices[0].Message.Content)
	c.logger.Debug("openai correction response",
		"request_id", requestID, "completion_id", resp.ID, "items", len(items))
	return items, nil
}

// mapOpenAIError converts SDK errors to our typed errors where useful.
func mapOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusTooManyRequests {
			var retryAfter time.Duration
			if apiErr.Response != nil {
				retryAfter = parseRetryAfter(apiErr.Response.Header.Get("Retry-After"))
			}
			return &RateLimitError{
				Provider:   OpenAIName,
				StatusCode: apiErr.StatusCode,
				Message:    apiErr.Message,
				RetryAfter: retryAfter,
			}
		}
		return fmt.Errorf("openai error (status %d): %s", apiErr.StatusCode, apiErr.Message)
	}
	return err
}

// Verify interface
var _ TextCorrector = (*OpenAICorrector)(nil)
