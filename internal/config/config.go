// Package config provides the process-wide configuration for the document
// translator and the general-purpose translation prompt template.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"doc-translator/internal/types"
)

// APIConfig holds the translation backend settings.
type APIConfig struct {
	// DefaultEndpoint is the OpenAI-compatible base URL, e.g.
	// "http://localhost:1234/v1".
	DefaultEndpoint string `mapstructure:"default_endpoint"`
	// DefaultModel is the model used when a call does not override it.
	DefaultModel string `mapstructure:"default_model"`
	// APIKey is sent as a Bearer token when non-empty. Local backends
	// usually need none.
	APIKey      string  `mapstructure:"api_key"`
	Temperature float64 `mapstructure:"temperature"`
	// MaxTokens caps the completion size per request.
	MaxTokens int `mapstructure:"max_tokens"`
	// ChunkMaxTokens is the per-chunk token budget that triggers chunking.
	ChunkMaxTokens int `mapstructure:"chunk_max_tokens"`
	// RequestTimeout bounds a single translation request. Large documents
	// run long in aggregate but each request stays bounded.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// ModelsTimeout bounds the advisory models-listing request.
	ModelsTimeout time.Duration `mapstructure:"models_timeout"`
	// MaxRetries is the per-request retry budget for transient failures.
	MaxRetries int `mapstructure:"max_retries"`
	// RetryBaseDelay is the backoff base: delay = base * 2^(attempt-1).
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"`
}

// Config is the root configuration record.
type Config struct {
	API APIConfig `mapstructure:"api"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			DefaultEndpoint: "http://localhost:1234/v1",
			DefaultModel:    "gpt-4o-mini",
			Temperature:     0.3,
			MaxTokens:       8192,
			ChunkMaxTokens:  2000,
			RequestTimeout:  30 * time.Minute,
			ModelsTimeout:   10 * time.Second,
			MaxRetries:      3,
			RetryBaseDelay:  time.Second,
		},
	}
}

// Load reads configuration from the given file (optional; empty means search
// for doctrans.yaml in the working directory and ~/.config/doctrans) plus
// DOCTRANS_* environment variables, layered over the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	def := Default()

	v.SetDefault("api.default_endpoint", def.API.DefaultEndpoint)
	v.SetDefault("api.default_model", def.API.DefaultModel)
	v.SetDefault("api.api_key", "")
	v.SetDefault("api.temperature", def.API.Temperature)
	v.SetDefault("api.max_tokens", def.API.MaxTokens)
	v.SetDefault("api.chunk_max_tokens", def.API.ChunkMaxTokens)
	v.SetDefault("api.request_timeout", def.API.RequestTimeout)
	v.SetDefault("api.models_timeout", def.API.ModelsTimeout)
	v.SetDefault("api.max_retries", def.API.MaxRetries)
	v.SetDefault("api.retry_base_delay", def.API.RetryBaseDelay)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("doctrans")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/doctrans")
	}

	v.SetEnvPrefix("DOCTRANS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if path != "" {
			return nil, types.NewAppError(types.ErrConfig, "failed to read config file", err)
		}
		// No explicit file: a missing config is fine, a corrupt one is not.
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, types.NewAppError(types.ErrConfig, "failed to read config file", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, types.NewAppError(types.ErrConfig, "invalid configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks numeric ranges.
func (c *Config) Validate() error {
	if c.API.ChunkMaxTokens <= 0 {
		return types.NewAppErrorWithDetails(types.ErrConfig, "invalid configuration",
			fmt.Sprintf("api.chunk_max_tokens must be positive, got %d", c.API.ChunkMaxTokens), nil)
	}
	if c.API.MaxRetries <= 0 {
		return types.NewAppErrorWithDetails(types.ErrConfig, "invalid configuration",
			fmt.Sprintf("api.max_retries must be positive, got %d", c.API.MaxRetries), nil)
	}
	if c.API.Temperature < 0 || c.API.Temperature > 2 {
		return types.NewAppErrorWithDetails(types.ErrConfig, "invalid configuration",
			fmt.Sprintf("api.temperature must be in [0,2], got %g", c.API.Temperature), nil)
	}
	return nil
}

// BuildTranslationPrompt builds the general-purpose instruction prompt used
// for models without a dedicated prompt strategy. The input carries
// __PROTECTED_..__ placeholders that must survive translation verbatim.
func (c *Config) BuildTranslationPrompt(text, targetLanguage string) string {
	var b strings.Builder
	b.WriteString("You are a faithful document translator. Translate the following text into ")
	b.WriteString(targetLanguage)
	b.WriteString(".\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Tokens of the form __PROTECTED_<digits>_<digits>__ are placeholders. Copy each one exactly, character by character. Never translate, modify, drop, or reorder them.\n")
	b.WriteString("- Preserve paragraph breaks and line structure.\n")
	b.WriteString("- Do not add explanations, notes, or markdown fences.\n")
	b.WriteString("- Output only the translated text.\n\n")
	b.WriteString("Text:\n")
	b.WriteString(text)
	return b.String()
}
