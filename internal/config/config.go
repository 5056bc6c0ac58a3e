package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/menta2k/quickcrop/pkg/processing"
)

// Config holds the application configuration
type Config struct {
	Input   InputConfig   `mapstructure:"input"`
	Output  OutputConfig  `mapstructure:"output"`
	Cropper CropperConfig `mapstructure:"cropper"`
	Batch   BatchConfig   `mapstructure:"batch"`
	Server  ServerConfig  `mapstructure:"server"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Log     LogConfig     `mapstructure:"log"`
}

// InputConfig selects which files of the input directory are processed
type InputConfig struct {
	Extensions      []string `mapstructure:"extensions"`
	CaseInsensitive bool     `mapstructure:"case_insensitive"`
	RequireAlpha    bool     `mapstructure:"require_alpha"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	Format   string `mapstructure:"format"`
	Prefix   string `mapstructure:"prefix"`
	Quality  int    `mapstructure:"quality"`
	Lossless bool   `mapstructure:"lossless"`
	Manifest bool   `mapstructure:"manifest"`
	// Compression is the PNG compression: best, default, speed or none
	Compression string `mapstructure:"compression"`
}

// CropperConfig holds configuration for alpha trimming
type CropperConfig struct {
	Strategy string `mapstructure:"strategy"`
	Padding  int    `mapstructure:"padding"`
}

// BatchConfig holds configuration for directory runs
type BatchConfig struct {
	Workers int `mapstructure:"workers"`
}

// ServerConfig holds configuration for the HTTP server
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	MaxUpload    int64         `mapstructure:"max_upload"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// RedisConfig holds configuration for the content box cache
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// LogConfig holds configuration for logging
type LogConfig struct {
	Mode  string `mapstructure:"mode"`
	Level string `mapstructure:"level"`
}

// Default returns a configuration with default values
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return &cfg
}

// Load reads configuration from a YAML file, falling back to defaults for
// missing keys. Environment variables prefixed with QUICKCROP_ override both
// (QUICKCROP_OUTPUT_PREFIX sets output.prefix). An empty path loads defaults
// and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("QUICKCROP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads the file at path if it exists and returns defaults
// (with environment overrides) otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return Load("")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("input.extensions", []string{".png"})
	v.SetDefault("input.case_insensitive", false)
	v.SetDefault("input.require_alpha", true)

	v.SetDefault("output.format", "png")
	v.SetDefault("output.prefix", "trimmed_")
	v.SetDefault("output.quality", 90)
	v.SetDefault("output.lossless", true)
	v.SetDefault("output.manifest", false)
	v.SetDefault("output.compression", processing.CompressionBest)

	v.SetDefault("cropper.strategy", "binary")
	v.SetDefault("cropper.padding", 0)

	v.SetDefault("batch.workers", runtime.NumCPU())

	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.max_upload", 32*1024*1024)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)

	v.SetDefault("log.mode", "debug")
	v.SetDefault("log.level", "info")
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.Set("input", map[string]any{
		"extensions":       c.Input.Extensions,
		"case_insensitive": c.Input.CaseInsensitive,
		"require_alpha":    c.Input.RequireAlpha,
	})
	v.Set("output", map[string]any{
		"format":      c.Output.Format,
		"prefix":      c.Output.Prefix,
		"quality":     c.Output.Quality,
		"lossless":    c.Output.Lossless,
		"manifest":    c.Output.Manifest,
		"compression": c.Output.Compression,
	})
	v.Set("cropper", map[string]any{
		"strategy": c.Cropper.Strategy,
		"padding":  c.Cropper.Padding,
	})
	v.Set("batch", map[string]any{
		"workers": c.Batch.Workers,
	})
	v.Set("server", map[string]any{
		"port":          c.Server.Port,
		"mode":          c.Server.Mode,
		"max_upload":    c.Server.MaxUpload,
		"read_timeout":  c.Server.ReadTimeout.String(),
		"write_timeout": c.Server.WriteTimeout.String(),
	})
	v.Set("redis", map[string]any{
		"enabled":  c.Redis.Enabled,
		"addr":     c.Redis.Addr,
		"password": c.Redis.Password,
		"db":       c.Redis.DB,
		"ttl":      c.Redis.TTL.String(),
	})
	v.Set("log", map[string]any{
		"mode":  c.Log.Mode,
		"level": c.Log.Level,
	})

	v.SetConfigType("yaml")
	if err := v.WriteConfigAs(filename); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if len(c.Input.Extensions) == 0 {
		return fmt.Errorf("input.extensions cannot be empty")
	}
	for _, ext := range c.Input.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("input.extensions: %q must start with a dot", ext)
		}
	}

	switch strings.ToLower(c.Output.Format) {
	case "png", "webp":
	default:
		return fmt.Errorf("output.format must be png or webp, got %q", c.Output.Format)
	}

	if c.Output.Prefix == "" {
		return fmt.Errorf("output.prefix cannot be empty")
	}
	if c.Output.Prefix != filepath.Base(c.Output.Prefix) {
		return fmt.Errorf("output.prefix must not contain path separators")
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	if _, err := processing.ParseCompression(c.Output.Compression); err != nil {
		return fmt.Errorf("output.compression: %w", err)
	}

	switch c.Cropper.Strategy {
	case "binary", "linear":
	default:
		return fmt.Errorf("cropper.strategy must be binary or linear, got %q", c.Cropper.Strategy)
	}

	if c.Cropper.Padding < 0 {
		return fmt.Errorf("cropper.padding must not be negative")
	}

	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers must be positive")
	}

	if c.Server.MaxUpload < 1 {
		return fmt.Errorf("server.max_upload must be positive")
	}

	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release or test, got %q", c.Server.Mode)
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.yaml"
	}
	return filepath.Join(home, ".config", "quickcrop", "config.yaml")
}
