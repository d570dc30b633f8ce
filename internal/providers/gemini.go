package providers

import (
	"bytes"
	"context"
	"encoding/base64"
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
	GeminiName    = "gemini"
	GeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	GeminiModel   = "gemini-2.5-flash"
)

// GeminiConfig holds configuration for the Gemini vision client.
type GeminiConfig struct {
	APIKey            string
	BaseURL           string // Optional (tests)
	Model             string
	Temperature       float64
	MaxOutputTokens   int
	Timeout           time.Duration
	RequestsPerMinute int
	Logger            *slog.Logger
}

// GeminiClient implements VisionClient using the Gemini generateContent
// REST API.
type GeminiClient struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	limiter     *RateLimiter
	client      *http.Client
	logger      *slog.Logger
}

// NewGeminiClient creates a new Gemini client, filling defaults.
func NewGeminiClient(cfg GeminiConfig) *GeminiClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = GeminiBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = GeminiModel
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.1 // Low for consistent structure output
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = 8192
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 10 // Free tier flash limit
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &GeminiClient{
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxOutputTokens,
		limiter:     NewRateLimiter(cfg.RequestsPerMinute),
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: cfg.Logger,
	}
}

// Name returns the provider identifier.
func (c *GeminiClient) Name() string {
	return GeminiName
}

// GenerateVision sends the prompt and PNG image to the model and
// returns the raw response text.
func (c *GeminiClient) GenerateVision(ctx context.Context, prompt string, image []byte) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("gemini API key is not set")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	requestID := uuid.New().String()
	c.logger.Debug("gemini vision request",
		"request_id", requestID, "model", c.model, "image_bytes", len(image))

	reqBody := geminiRequest{
		Contents: []geminiContent{
			{
				Role: "user",
				Parts: []geminiPart{
					{InlineData: &geminiInlineData{MimeType: "image/png", Data: base64.StdEncoding.EncodeToString(image)}},
					{Text: prompt},
				},
			},
		},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:      c.temperature,
			ResponseMimeType: "application/json",
			MaxOutputTokens:  c.maxTokens,
		},
	}

	resp, err := c.doRequest(ctx, reqBody)
	if err != nil {
		c.logger.Debug("gemini vision request failed", "request_id", requestID, "error", err)
		return "", err
	}

	text := resp.text()
	if text == "" {
		return "", fmt.Errorf("gemini returned no text candidates")
	}

	var totalTokens int
	if resp.UsageMetadata != nil {
		totalTokens = resp.UsageMetadata.TotalTokenCount
	}
	c.logger.Debug("gemini vision response",
		"request_id", requestID, "chars", len(text), "total_tokens", totalTokens)
	return text, nil
}

// doRequest makes a generateContent call and decodes the response.
func (c *GeminiClient) doRequest(ctx context.Context, body geminiRequest) (*geminiResponse, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

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
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		c.limiter.Record429(retryAfter)
		return nil, &RateLimitError{
			Provider:   GeminiName,
			StatusCode: resp.StatusCode,
			Message:    geminiErrorMessage(respBody),
			RetryAfter: retryAfter,
		}
	}
	if resp.StatusCode != http.StatusOK {
		if msg := geminiErrorMessage(respBody); msg != "" {
			return nil, fmt.Errorf("gemini error (status %d): %s", resp.StatusCode, msg)
		}
		return nil, fmt.Errorf("gemini error (status %d): %s", resp.StatusCode, truncate(string(respBody), 500))
	}

	var genResp geminiResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &genResp, nil
}

func geminiErrorMessage(body []byte) string {
	var errResp geminiErrorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		if errResp.Error.Status != "" {
			return fmt.Sprintf("%s: %s", errResp.Error.Status, errResp.Error.Message)
		}
		return errResp.Error.Message
	}
	return ""
}

// truncate shortens s for error messages and logs.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Gemini API types

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates    []geminiCandidate `json:"candidates"`
	UsageMetadata *geminiUsage      `json:"usageMetadata,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiUsage struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// text joins the text parts of the first candidate.
func (r *geminiResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, part := range r.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String()
}

// Verify interface
var _ VisionClient = (*GeminiClient)(nil)
