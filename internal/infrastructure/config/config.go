// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	baseURL := cfg.Exporter.BaseURL
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the entire application configuration
type Config struct {
	Exporter      ExporterConfig      `yaml:"exporter"`
	Storage       StorageConfig       `yaml:"storage"`
	API           APIConfig           `yaml:"api"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ExporterConfig holds export run settings
type ExporterConfig struct {
	BaseURL        string `yaml:"base_url"`
	OutputDir      string `yaml:"output_dir"`
	RequestDelayMs int    `yaml:"request_delay_ms"`
	UserAgent      string `yaml:"user_agent"`
	StateKey       string `yaml:"state_key"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// APIConfig holds HTTP API settings
type APIConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${AMAZON_BASE_URL})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := &Config{
		Exporter: ExporterConfig{
			BaseURL:        getEnv("AMAZON_BASE_URL", ""),
			OutputDir:      getEnv("EXPORT_OUTPUT_DIR", "exports"),
			RequestDelayMs: getEnvInt("EXPORT_REQUEST_DELAY_MS", 200),
			UserAgent:      getEnv("EXPORT_USER_AGENT", ""),
			StateKey:       getEnv("EXPORT_STATE_KEY", "amazonExporter"),
		},
		Storage: StorageConfig{
			DatabasePath: getEnv("EXPORT_DB_PATH", "amazon_export.db"),
		},
		API: APIConfig{
			Port: getEnvInt("API_PORT", 8080),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnvWithPath("config.yaml")
}

// LoadOrEnvWithPath tries to load from specified path, falls back to environment variables
func LoadOrEnvWithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

func (c *Config) applyDefaults() {
	if c.Exporter.OutputDir == "" {
		c.Exporter.OutputDir = "exports"
	}
	if c.Exporter.RequestDelayMs <= 0 {
		c.Exporter.RequestDelayMs = 200
	}
	if c.Exporter.StateKey == "" {
		c.Exporter.StateKey = "amazonExporter"
	}
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = "amazon_export.db"
	}
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "text"
	}
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}
