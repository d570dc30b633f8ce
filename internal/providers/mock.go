package providers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const (
	MockVisionName    = "mock-vision"
	MockCorrectorName = "mock-corrector"
)

// VisionTurn scripts the outcome of one GenerateVision call.
type VisionTurn struct {
	Text string
	Err  error
}

// MockVisionClient is a VisionClient for testing.
type MockVisionClient struct {
	// Configurable behavior
	Latency      time.Duration
	ResponseText string
	Err          error        // Fail every call when set and Script is empty
	Script       []VisionTurn // Per-call outcomes; the last entry repeats

	requestCount atomic.Int64

	mu      sync.Mutex
	prompts []string
}

// NewMockVisionClient creates a new mock vision client with sensible
// defaults.
func NewMockVisionClient() *MockVisionClient {
	return &MockVisionClient{
		ResponseText: `{"page_type": "content_slide", "title": "Mock", "content_blocks": [], "layout": "single_column"}`,
	}
}

// Name returns the client identifier.
func (c *MockVisionClient) Name() string {
	return MockVisionName
}

// GenerateVision replays the scripted outcome for this call.
func (c *MockVisionClient) GenerateVision(ctx context.Context, prompt string, image []byte) (string, error) {
	count := c.requestCount.Add(1)

	c.mu.Lock()
	c.prompts = append(c.prompts, prompt)
	c.mu.Unlock()

	if c.Latency > 0 {
		select {
		case <-time.After(c.Latency):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if len(c.Script) > 0 {
		idx := int(count) - 1
		if idx >= len(c.Script) {
			idx = len(c.Script) - 1
		}
		turn := c.Script[idx]
		return turn.Text, turn.Err
	}

	if c.Err != nil {
		return "", c.Err
	}
	return c.ResponseText, nil
}

// RequestCount returns the number of requests made.
func (c *MockVisionClient) RequestCount() int64 {
	return c.requestCount.Load()
}

// Prompts returns a copy of the prompts seen so far.
func (c *MockVisionClient) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.prompts))
	copy(out, c.prompts)
	return out
}

// Reset resets the request counter and recorded prompts.
func (c *MockVisionClient) Reset() {
	c.requestCount.Store(0)
	c.mu.Lock()
	c.prompts = nil
	c.mu.Unlock()
}

// Verify interface
var _ VisionClient = (*MockVisionClient)(nil)

// MockCorrector is a TextCorrector for testing.
type MockCorrector struct {
	// Configurable behavior
	Latency time.Duration
	Err     error    // Fail every call when set
	Output  []string // Returned verbatim when set; otherwise inputs echo back

	requestCount atomic.Int64

	mu          sync.Mutex
	lastTexts   []string
	lastContext string
}

// NewMockCorrector creates a new mock corrector that echoes its inputs.
func NewMockCorrector() *MockCorrector {
	return &MockCorrector{}
}

// Name returns the corrector identifier.
func (c *MockCorrector) Name() string {
	return MockCorrectorName
}

// CorrectTexts records the call and returns the configured output.
func (c *MockCorrector) CorrectTexts(ctx context.Context, texts []string, slideContext string) ([]string, error) {
	c.requestCount.Add(1)

	c.mu.Lock()
	c.lastTexts = append([]string(nil), texts...)
	c.lastContext = slideContext
	c.mu.Unlock()

	if c.Latency > 0 {
		select {
		case <-time.After(c.Latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if c.Err != nil {
		return nil, c.Err
	}
	if c.Output != nil {
		return append([]string(nil), c.Output...), nil
	}
	return append([]string(nil), texts...), nil
}

// RequestCount returns the number of requests made.
func (c *MockCorrector) RequestCount() int64 {
	return c.requestCount.Load()
}

// LastTexts returns the texts from the most recent call.
func (c *MockCorrector) LastTexts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lastTexts...)
}

// LastContext returns the context string from the most recent call.
func (c *MockCorrector) LastContext() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastContext
}

// Reset resets the request counter and recorded inputs.
func (c *MockCorrector) Reset() {
	c.requestCount.Store(0)
	c.mu.Lock()
	c.lastTexts = nil
	c.lastContext = ""
	c.mu.Unlock()
}

// Verify interface
var _ TextCorrector = (*MockCorrector)(nil)
