package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, []string{".png"}, cfg.Input.Extensions)
	assert.False(t, cfg.Input.CaseInsensitive)
	assert.True(t, cfg.Input.RequireAlpha)
	assert.Equal(t, "png", cfg.Output.Format)
	assert.Equal(t, "trimmed_", cfg.Output.Prefix)
	assert.Equal(t, "best", cfg.Output.Compression)
	assert.Equal(t, "binary", cfg.Cropper.Strategy)
	assert.Positive(t, cfg.Batch.Workers)
	assert.Equal(t, 24*time.Hour, cfg.Redis.TTL)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
input:
  extensions: [".png", ".webp"]
  case_insensitive: true
output:
  prefix: "cut_"
  format: webp
cropper:
  strategy: linear
  padding: 2
batch:
  workers: 3
redis:
  ttl: 1h
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{".png", ".webp"}, cfg.Input.Extensions)
	assert.True(t, cfg.Input.CaseInsensitive)
	assert.Equal(t, "cut_", cfg.Output.Prefix)
	assert.Equal(t, "webp", cfg.Output.Format)
	assert.Equal(t, "linear", cfg.Cropper.Strategy)
	assert.Equal(t, 2, cfg.Cropper.Padding)
	assert.Equal(t, 3, cfg.Batch.Workers)
	assert.Equal(t, time.Hour, cfg.Redis.TTL)
	// untouched keys keep their defaults
	assert.Equal(t, 90, cfg.Output.Quality)
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "trimmed_", cfg.Output.Prefix)
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("QUICKCROP_OUTPUT_PREFIX", "env_")
	t.Setenv("QUICKCROP_BATCH_WORKERS", "7")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env_", cfg.Output.Prefix)
	assert.Equal(t, 7, cfg.Batch.Workers)
}

func TestSaveToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Output.Prefix = "saved_"
	cfg.Output.Compression = "speed"
	cfg.Redis.TTL = 90 * time.Minute
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "saved_", loaded.Output.Prefix)
	assert.Equal(t, "speed", loaded.Output.Compression)
	assert.Equal(t, 90*time.Minute, loaded.Redis.TTL)
	assert.Equal(t, cfg.Input.Extensions, loaded.Input.Extensions)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no extensions", func(c *Config) { c.Input.Extensions = nil }},
		{"extension without dot", func(c *Config) { c.Input.Extensions = []string{"png"} }},
		{"bad format", func(c *Config) { c.Output.Format = "gif" }},
		{"empty prefix", func(c *Config) { c.Output.Prefix = "" }},
		{"prefix with separator", func(c *Config) { c.Output.Prefix = "out/" }},
		{"quality", func(c *Config) { c.Output.Quality = 0 }},
		{"compression", func(c *Config) { c.Output.Compression = "max" }},
		{"strategy", func(c *Config) { c.Cropper.Strategy = "fuzzy" }},
		{"padding", func(c *Config) { c.Cropper.Padding = -1 }},
		{"workers", func(c *Config) { c.Batch.Workers = 0 }},
		{"max upload", func(c *Config) { c.Server.MaxUpload = 0 }},
		{"server mode", func(c *Config) { c.Server.Mode = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestGetConfigPath(t *testing.T) {
	assert.Equal(t, "config.yaml", filepath.Base(GetConfigPath()))
}
