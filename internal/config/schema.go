package config

import "time"

// Config holds redeck configuration.
// Stored at: ~/.redeck/config.yaml
type Config struct {
	Providers  map[string]ProviderCfg `mapstructure:"providers" yaml:"providers"`
	Vision     VisionCfg              `mapstructure:"vision" yaml:"vision"`
	Correction CorrectionCfg          `mapstructure:"correction" yaml:"correction"`
	Render     RenderCfg              `mapstructure:"render" yaml:"render"`
	Fetch      FetchCfg               `mapstructure:"fetch" yaml:"fetch"`
	Scrub      ScrubCfg               `mapstructure:"scrub" yaml:"scrub"`
	Watch      WatchCfg               `mapstructure:"watch" yaml:"watch"`
	Log        LogCfg                 `mapstructure:"log" yaml:"log"`
}

// ProviderCfg configures a model provider.
type ProviderCfg struct {
	Model             string `mapstructure:"model" yaml:"model"`                             // Empty uses the client default
	APIKey            string `mapstructure:"api_key" yaml:"api_key"`                         // API key (supports ${ENV_VAR} syntax)
	RequestsPerMinute int    `mapstructure:"requests_per_minute" yaml:"requests_per_minute"` // 0 uses the client default
}

// VisionCfg tunes page structure analysis.
type VisionCfg struct {
	Provider          string `mapstructure:"provider" yaml:"provider"`                       // "gemini"
	MaxRetries        int    `mapstructure:"max_retries" yaml:"max_retries"`                 // Retries after the first attempt
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" yaml:"retry_delay_seconds"` // Base backoff delay
}

// RetryDelay returns the base backoff delay as a duration.
func (v VisionCfg) RetryDelay() time.Duration {
	return time.Duration(v.RetryDelaySeconds) * time.Second
}

// CorrectionCfg tunes OCR text correction.
type CorrectionCfg struct {
	LLM      bool   `mapstructure:"llm" yaml:"llm"`           // Enable the LLM correction stage
	Provider string `mapstructure:"provider" yaml:"provider"` // "anthropic" or "openai"
	Context  string `mapstructure:"context" yaml:"context"`   // Free-text hint sent with each batch
}

// RenderCfg tunes PDF rasterization.
type RenderCfg struct {
	DPI int `mapstructure:"dpi" yaml:"dpi"`
}

// FetchCfg tunes remote image downloads.
type FetchCfg struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	Attempts       int `mapstructure:"attempts" yaml:"attempts"`
	RetryDelayMS   int `mapstructure:"retry_delay_ms" yaml:"retry_delay_ms"`
}

// Timeout returns the per-request timeout as a duration.
func (f FetchCfg) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// Delay returns the inter-attempt delay as a duration.
func (f FetchCfg) Delay() time.Duration {
	return time.Duration(f.RetryDelayMS) * time.Millisecond
}

// ScrubCfg locates the logo region on exported pages.
type ScrubCfg struct {
	LogoLeft float64 `mapstructure:"logo_left" yaml:"logo_left"` // Points from the left page edge
	LogoTop  float64 `mapstructure:"logo_top" yaml:"logo_top"`   // Points from the top page edge
}

// WatchCfg tunes the drop-directory watcher.
type WatchCfg struct {
	Dir            string `mapstructure:"dir" yaml:"dir"` // Empty watches the home inbox
	PollIntervalMS int    `mapstructure:"poll_interval_ms" yaml:"poll_interval_ms"`
	StablePolls    int    `mapstructure:"stable_polls" yaml:"stable_polls"`
}

// PollInterval returns the quiescence poll spacing as a duration.
func (w WatchCfg) PollInterval() time.Duration {
	return time.Duration(w.PollIntervalMS) * time.Millisecond
}

// LogCfg tunes CLI logging.
type LogCfg struct {
	Level string `mapstructure:"level" yaml:"level"` // debug, info, warn, or error
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Providers: map[string]ProviderCfg{
			"gemini": {
				Model:             "gemini-2.5-flash",
				APIKey:            "${GEMINI_API_KEY}",
				RequestsPerMinute: 10,
			},
			"anthropic": {
				Model:  "claude-sonnet-4-20250514",
				APIKey: "${ANTHROPIC_API_KEY}",
			},
			"openai": {
				Model:  "gpt-4o-mini",
				APIKey: "${OPENAI_API_KEY}",
			},
		},
		Vision: VisionCfg{
			Provider:          "gemini",
			MaxRetries:        3,
			RetryDelaySeconds: 2,
		},
		Correction: CorrectionCfg{
			LLM:      false,
			Provider: "anthropic",
		},
		Render: RenderCfg{
			DPI: 150,
		},
		Fetch: FetchCfg{
			TimeoutSeconds: 30,
			Attempts:       3,
			RetryDelayMS:   500,
		},
		Scrub: ScrubCfg{
			LogoLeft: 1269,
			LogoTop:  747,
		},
		Watch: WatchCfg{
			PollIntervalMS: 500,
			StablePolls:    2,
		},
		Log: LogCfg{
			Level: "info",
		},
	}
}

// GetProvider returns a provider config by name.
func (c *Config) GetProvider(name string) (ProviderCfg, bool) {
	cfg, ok := c.Providers[name]
	return cfg, ok
}

// VisionProvider returns the provider config selected for structure
// analysis.
func (c *Config) VisionProvider() (ProviderCfg, bool) {
	return c.GetProvider(c.Vision.Provider)
}

// CorrectionProvider returns the provider config selected for text
// correction.
func (c *Config) CorrectionProvider() (ProviderCfg, bool) {
	return c.GetProvider(c.Correction.Provider)
}
