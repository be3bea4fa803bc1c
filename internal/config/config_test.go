package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-translator/internal/types"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://localhost:1234/v1", cfg.API.DefaultEndpoint)
	assert.Equal(t, 2000, cfg.API.ChunkMaxTokens)
	assert.Equal(t, 3, cfg.API.MaxRetries)
	assert.Equal(t, time.Second, cfg.API.RetryBaseDelay)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doctrans.yaml")
	content := "api:\n  chunk_max_tokens: 512\n  default_model: test-model\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 512, cfg.API.ChunkMaxTokens)
	assert.Equal(t, "test-model", cfg.API.DefaultModel)
	// Untouched keys keep their defaults.
	assert.Equal(t, 3, cfg.API.MaxRetries)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, types.ErrConfig, types.CodeOf(err))
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doctrans.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: {}\n"), 0o644))

	t.Setenv("DOCTRANS_API_DEFAULT_MODEL", "env-model")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-model", cfg.API.DefaultModel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"zero chunk budget", func(c *Config) { c.API.ChunkMaxTokens = 0 }, false},
		{"zero retries", func(c *Config) { c.API.MaxRetries = 0 }, false},
		{"temperature too high", func(c *Config) { c.API.Temperature = 2.5 }, false},
		{"temperature zero", func(c *Config) { c.API.Temperature = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, types.ErrConfig, types.CodeOf(err))
			}
		})
	}
}

func TestBuildTranslationPrompt(t *testing.T) {
	cfg := Default()
	out := cfg.BuildTranslationPrompt("Some __PROTECTED_1_000000__ text.", "German")
	assert.Contains(t, out, "German")
	assert.Contains(t, out, "Some __PROTECTED_1_000000__ text.")
	assert.Contains(t, out, "placeholders")
}
