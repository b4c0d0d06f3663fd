// Package config provides unified configuration loading for the service.
// Supports YAML files, environment variables, and programmatic overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the analysis service.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	OpenAI        OpenAIConfig        `yaml:"openai"`
	Registry      RegistryConfig      `yaml:"registry"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
	MaxUploadBytes   int64         `yaml:"max_upload_bytes"`
}

// OpenAIConfig holds settings for the external inference service.
type OpenAIConfig struct {
	BaseURL          string        `yaml:"base_url"`
	APIKey           string        `yaml:"-"` // env only, never from file
	Model            string        `yaml:"model"`
	UploadPurpose    string        `yaml:"upload_purpose"`
	InferenceTimeout time.Duration `yaml:"inference_timeout"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`
	RasterDPI        int           `yaml:"raster_dpi"`
}

// RegistryConfig holds settings for the broker license verification portal.
type RegistryConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8000,
			ReadTimeout:      2 * time.Minute,
			WriteTimeout:     3 * time.Minute,
			IdleTimeout:      time.Minute,
			GracefulShutdown: 15 * time.Second,
			MaxUploadBytes:   64 << 20,
		},
		OpenAI: OpenAIConfig{
			BaseURL:          "https://api.openai.com/v1",
			Model:            "chatgpt-4o-latest",
			UploadPurpose:    "vision",
			InferenceTimeout: 90 * time.Second,
			RequestTimeout:   2 * time.Minute,
			RasterDPI:        200,
		},
		Registry: RegistryConfig{
			BaseURL: "https://www.vworld.kr",
			Timeout: 30 * time.Second,
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "json",
		},
	}
}

// Load reads configuration from the given YAML file, falling back to defaults
// for anything unset, then applies environment variable overrides. An empty
// path skips the file entirely.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.OpenAI.InferenceTimeout <= 0 {
		return fmt.Errorf("inference_timeout must be positive")
	}

	if c.OpenAI.RasterDPI < 72 || c.OpenAI.RasterDPI > 600 {
		return fmt.Errorf("raster_dpi must be between 72 and 600, got %d", c.OpenAI.RasterDPI)
	}

	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive")
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("SERVER_PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}

	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.OpenAI.BaseURL = v
	}

	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.OpenAI.Model = v
	}

	if v := os.Getenv("REGISTRY_BASE_URL"); v != "" {
		cfg.Registry.BaseURL = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}
