// Package providers holds the external model capabilities the
// conversion pipeline depends on: vision structure analysis and batch
// text correction, with concrete clients, mocks, and rate limiting.
package providers

import (
	"context"
)

// VisionClient submits one page image with an instruction prompt and
// returns the model's raw text response. Parsing, repair, validation,
// and retry policy belong to the caller.
type VisionClient interface {
	// Name returns the client identifier (e.g., "gemini").
	Name() string

	// GenerateVision sends the prompt plus a PNG image and returns the
	// raw response text.
	GenerateVision(ctx context.Context, prompt string, image []byte) (string, error)
}

// TextCorrector fixes OCR-damaged texts in one batched call. Results
// come back in submission order; implementations return however many
// items the service produced, and callers enforce count integrity.
type TextCorrector interface {
	// Name returns the client identifier (e.g., "anthropic").
	Name() string

	// CorrectTexts submits texts with an optional free-text context
	// biasing the corrections.
	CorrectTexts(ctx context.Context, texts []string, slideContext string) ([]string, error)
}
