// Package config provides configuration management for the application.
//
// Values are resolved in order: built-in defaults, an optional config.yaml
// (with ${VAR} and ${VAR:-default} expansion), then environment variables.
// A .env file in the working directory is loaded into the environment first
// without overriding variables that are already set.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultBodySizeLimit is the maximum inbound request body size (10MB)
const DefaultBodySizeLimit int64 = 10 * 1024 * 1024

// defaultConfigPaths are probed in order; the first one that exists wins
var defaultConfigPaths = []string{"config/config.yaml", "config.yaml"}

// Config holds the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	HTTP      HTTPConfig      `yaml:"http"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string `yaml:"port"`
	// MasterKey, when set, is required as a bearer token on /ai/chat
	MasterKey     string `yaml:"master_key"`
	BodySizeLimit int64  `yaml:"body_size_limit"`
}

// AnthropicConfig holds upstream provider configuration.
// An empty APIKey is not a load error: chat requests fail with a
// configuration error instead.
type AnthropicConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// HTTPConfig holds outbound HTTP client settings
type HTTPConfig struct {
	// Timeout bounds a whole upstream call. Zero means no limit.
	Timeout time.Duration `yaml:"timeout"`
}

// MetricsConfig holds Prometheus exposition settings
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// LogConfig holds logging settings
type LogConfig struct {
	// Format is "json", "text" or empty for auto-detection
	Format string `yaml:"format"`
	Level  string `yaml:"level"`
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:          "8080",
			BodySizeLimit: DefaultBodySizeLimit,
		},
		Metrics: MetricsConfig{
			Endpoint: "/metrics",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from .env, config.yaml and the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := defaults()

	for _, path := range defaultConfigPaths {
		loaded, err := loadYAML(path, cfg)
		if err != nil {
			return nil, err
		}
		if loaded {
			break
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	// An unexpanded placeholder means the key was never provided.
	if strings.Contains(cfg.Anthropic.APIKey, "${") {
		cfg.Anthropic.APIKey = ""
	}

	return cfg, nil
}

// loadYAML merges the file at path into cfg. It reports false when the file does not exist.
func loadYAML(path string, cfg *Config) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal([]byte(expandString(string(data))), cfg); err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return true, nil
}

// applyEnvOverrides applies environment variables on top of file and default values
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("GATEWAY_MASTER_KEY"); v != "" {
		cfg.Server.MasterKey = v
	}
	if v := os.Getenv("BODY_SIZE_LIMIT"); v != "" {
		limit, err := strconv.ParseInt(v, 10, 64)
		if err != nil || limit <= 0 {
			return fmt.Errorf("invalid BODY_SIZE_LIMIT %q: must be a positive number of bytes", v)
		}
		cfg.Server.BodySizeLimit = limit
	}

	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.Anthropic.APIKey = v
	}
	if v := os.Getenv("ANTHROPIC_BASE_URL"); v != "" {
		cfg.Anthropic.BaseURL = v
	}

	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid HTTP_TIMEOUT %q: %w", v, err)
		}
		cfg.HTTP.Timeout = d
	}

	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid METRICS_ENABLED %q: %w", v, err)
		}
		cfg.Metrics.Enabled = enabled
	}
	if v := os.Getenv("METRICS_ENDPOINT"); v != "" {
		cfg.Metrics.Endpoint = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}

	return nil
}

// parseDuration accepts either plain integers (interpreted as seconds) or Go
// duration strings (e.g., "10m", "1h30m").
func parseDuration(val string) (time.Duration, error) {
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(val)
}

var placeholderPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// expandString replaces ${VAR} and ${VAR:-default} with environment values.
// ${VAR} is left untouched when VAR is unset or empty so missing values stay visible.
func expandString(s string) string {
	return placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := placeholderPattern.FindStringSubmatch(match)
		name, hasDefault, def := parts[1], parts[2] != "", parts[3]

		if val := os.Getenv(name); val != "" {
			return val
		}
		if hasDefault {
			return def
		}
		return match
	})
}
