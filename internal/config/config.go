package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/redeck/redeck/internal/providers"
)

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a new config manager and loads initial config.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{
		callbacks: make([]func(*Config), 0),
	}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper(cfgFile string) error {
	defaults := DefaultConfig()
	viper.SetDefault("providers", defaults.Providers)
	viper.SetDefault("vision", defaults.Vision)
	viper.SetDefault("correction", defaults.Correction)
	viper.SetDefault("render", defaults.Render)
	viper.SetDefault("fetch", defaults.Fetch)
	viper.SetDefault("scrub", defaults.Scrub)
	viper.SetDefault("watch", defaults.Watch)
	viper.SetDefault("log", defaults.Log)

	// Environment variables with REDECK_ prefix
	viper.SetEnvPrefix("REDECK")
	viper.AutomaticEnv()

	// Config file
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.redeck")
	}

	// Try to read config file (not required)
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration.
func (cm *Manager) WatchConfig() {
	viper.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	viper.WatchConfig()
}

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	pattern := regexp.MustCompile(`\$\{([^}]+)\}`)
	return pattern.ReplaceAllStringFunc(value, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// ToGeminiConfig converts the gemini provider entry to a client config.
// It resolves ${ENV_VAR} references in the API key.
func (c *Config) ToGeminiConfig() providers.GeminiConfig {
	p, _ := c.GetProvider(providers.GeminiName)
	return providers.GeminiConfig{
		APIKey:            ResolveEnvVars(p.APIKey),
		Model:             p.Model,
		RequestsPerMinute: p.RequestsPerMinute,
	}
}

// ToAnthropicConfig converts the anthropic provider entry to a client
// config. It resolves ${ENV_VAR} references in the API key.
func (c *Config) ToAnthropicConfig() providers.AnthropicConfig {
	p, _ := c.GetProvider(providers.AnthropicName)
	return providers.AnthropicConfig{
		APIKey: ResolveEnvVars(p.APIKey),
		Model:  p.Model,
	}
}

// ToOpenAIConfig converts the openai provider entry to a client config.
// It resolves ${ENV_VAR} references in the API key.
func (c *Config) ToOpenAIConfig() providers.OpenAIConfig {
	p, _ := c.GetProvider(providers.OpenAIName)
	return providers.OpenAIConfig{
		APIKey: ResolveEnvVars(p.APIKey),
		Model:  p.Model,
	}
}

// NewVisionClient builds the vision client selected by the vision
// section.
func (c *Config) NewVisionClient() (providers.VisionClient, error) {
	switch c.Vision.Provider {
	case providers.GeminiName, "":
		return providers.NewGeminiClient(c.ToGeminiConfig()), nil
	default:
		return nil, fmt.Errorf("unknown vision provider: %s", c.Vision.Provider)
	}
}

// NewCorrector builds the text corrector selected by the correction
// section.
func (c *Config) NewCorrector() (providers.TextCorrector, error) {
	switch c.Correction.Provider {
	case providers.AnthropicName, "":
		return providers.NewAnthropicCorrector(c.ToAnthropicConfig()), nil
	case providers.OpenAIName:
		return providers.NewOpenAICorrector(c.ToOpenAIConfig()), nil
	default:
		return nil, fmt.Errorf("unknown correction provider: %s", c.Correction.Provider)
	}
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# redeck configuration
# API keys use ${ENV_VAR} syntax to reference environment variables
# Set these in your shell: export GEMINI_API_KEY=xxx ANTHROPIC_API_KEY=xxx OPENAI_API_KEY=xxx

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
