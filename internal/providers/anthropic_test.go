package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestAnthropicCorrector_CorrectTexts(t *testing.T) {
	t.Run("successful correction", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Verify request
			if r.URL.Path != "/v1/messages" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if key := r.Header.Get("x-api-key"); key != "test-key" {
				t.Errorf("unexpected api key header: %s", key)
			}
			if v := r.Header.Get("anthropic-version"); v != "2023-06-01" {
				t.Errorf("unexpected version header: %s", v)
			}

			var req anthropicRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("failed to decode request: %v", err)
			}
			if req.Model != AnthropicModel {
				t.Errorf("model = %q, want %q", req.Model, AnthropicModel)
			}
			if req.MaxTokens != 2000 {
				t.Errorf("max_tokens = %d, want 2000", req.MaxTokens)
			}
			if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
				t.Fatalf("unexpected messages: %+v", req.Messages)
			}
			if !strings.Contains(req.Messages[0].Content, "[1] inteligent") {
				t.Errorf("prompt missing numbered texts:\n%s", req.Messages[0].Content)
			}
			if !strings.Contains(req.Messages[0].Content, "Context: Quarterly deck") {
				t.Errorf("prompt missing context:\n%s", req.Messages[0].Content)
			}

			resp := anthropicResponse{
				ID: "msg_01",
				Content: []anthropicContentBlock{
					{Type: "text", Text: "[1] intelligent\n[2] forecast"},
				},
				StopReason: "end_turn",
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(resp)
		}))
		defer server.Close()

		corrector := NewAnthropicCorrector(AnthropicConfig{
			APIKey:  "test-key",
			BaseURL: server.URL,
		})

		got, err := corrector.CorrectTexts(context.Background(), []string{"inteligent", "forecsat"}, "Quarterly deck")
		if err != nil {
			t.Fatalf("CorrectTexts() error = %v", err)
		}
		want := []string{"intelligent", "forecast"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("count mismatch passes through", func(t *testing.T) {
		// The corrector returns whatever the model produced. Enforcing
		// the batch contract is the caller's job.
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			resp := anthropicResponse{
				Content: []anthropicContentBlock{{Type: "text", Text: "[1] only one"}},
			}
			json.NewEncoder(w).Encode(resp)
		}))
		defer server.Close()

		corrector := NewAnthropicCorrector(AnthropicConfig{APIKey: "test-key", BaseURL: server.URL})

		got, err := corrector.CorrectTexts(context.Background(), []string{"a", "b"}, "")
		if err != nil {
			t.Fatalf("CorrectTexts() error = %v", err)
		}
		if len(got) != 1 {
			t.Errorf("got %d items, want 1", len(got))
		}
	})

	t.Run("empty input skips request", func(t *testing.T) {
		var called bool
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer server.Close()

		corrector := NewAnthropicCorrector(AnthropicConfig{APIKey: "test-key", BaseURL: server.URL})

		got, err := corrector.CorrectTexts(context.Background(), nil, "")
		if err != nil {
			t.Fatalf("CorrectTexts() error = %v", err)
		}
		if got != nil {
			t.Errorf("got %v, want nil", got)
		}
		if called {
			t.Error("expected no HTTP request for empty input")
		}
	})

	t.Run("rate limit response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "12")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]any{
				"type": "error",
				"error": map[string]string{
					"type":    "rate_limit_error",
					"message": "Number of requests has exceeded your rate limit",
				},
			})
		}))
		defer server.Close()

		corrector := NewAnthropicCorrector(AnthropicConfig{APIKey: "test-key", BaseURL: server.URL})

		_, err := corrector.CorrectTexts(context.Background(), []string{"a"}, "")
		if err == nil {
			t.Fatal("expected error for 429 response")
		}

		rle, ok := IsRateLimitError(err)
		if !ok {
			t.Fatalf("expected RateLimitError, got %T: %v", err, err)
		}
		if rle.Provider != AnthropicName {
			t.Errorf("Provider = %q, want %q", rle.Provider, AnthropicName)
		}
		if rle.RetryAfter != 12*time.Second {
			t.Errorf("RetryAfter = %v, want 12s", rle.RetryAfter)
		}
	})

	t.Run("API error response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{
				"type": "error",
				"error": map[string]string{
					"type":    "invalid_request_error",
					"message": "max_tokens is required",
				},
			})
		}))
		defer server.Close()

		corrector := NewAnthropicCorrector(AnthropicConfig{APIKey: "test-key", BaseURL: server.URL})

		_, err := corrector.CorrectTexts(context.Background(), []string{"a"}, "")
		if err == nil {
			t.Fatal("expected error for API error response")
		}
		if !strings.Contains(err.Error(), "invalid_request_error") {
			t.Errorf("error %q missing API error type", err)
		}
	})

	t.Run("missing API key", func(t *testing.T) {
		corrector := NewAnthropicCorrector(AnthropicConfig{})
		if _, err := corrector.CorrectTexts(context.Background(), []string{"a"}, ""); err == nil {
			t.Error("expected error without API key")
		}
	})
}

// TestAnthropicIntegration runs a real correction against the Anthropic API.
// Requires ANTHROPIC_API_KEY environment variable to be set.
func TestAnthropicIntegration(t *testing.T) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		t.Skip("ANTHROPIC_API_KEY not set - skipping integration test")
	}

	corrector := NewAnthropicCorrector(AnthropicConfig{APIKey: apiKey})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	got, err := corrector.CorrectTexts(ctx, []string{"inteligent supply chain", "revenue forecsat"}, "")
	if err != nil {
		t.Fatalf("CorrectTexts() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d items, want 2", len(got))
	}
	t.Logf("Corrected: %q", got)
}
