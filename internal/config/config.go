package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when neither configuration nor environment provide a value.
const (
	DefaultAppName     = "default"
	DefaultEnvironment = "development"
)

// Config is the client configuration. Hosts construct it directly or load it
// from a YAML file and overlay OML_* environment variables.
type Config struct {
	// ServerURL is the collector base URL, e.g. "https://collector.example.com".
	ServerURL string `yaml:"serverUrl"`
	// APIKey is attached to every request as a bearer credential.
	APIKey string `yaml:"apiKey"`
	// AppName identifies the sending application. Falls back to OML_APP_NAME,
	// then DefaultAppName.
	AppName string `yaml:"appName"`
	// Environment tags events with the deployment environment. Falls back to
	// OML_ENVIRONMENT, then DefaultEnvironment.
	Environment string `yaml:"environment"`
	// FlushIntervalMs is the buffering window before a scheduled flush.
	FlushIntervalMs int `yaml:"flushIntervalMs"`
	// StreamWindowSize caps the live-stream record window.
	StreamWindowSize int `yaml:"streamWindowSize"`
	// LogLevel controls the SDK's internal logger: debug|info|warn|error.
	LogLevel string `yaml:"logLevel"`
	// LogFormat controls the SDK's internal logger output: text|json.
	LogFormat string `yaml:"logFormat"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		FlushIntervalMs:  2000,
		StreamWindowSize: 5000,
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// Load reads configuration from a YAML file layered over Default(). An empty
// path returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports configuration the client cannot run with.
func (c Config) Validate() error {
	if c.ServerURL == "" {
		return errors.New("serverUrl is required")
	}
	if c.FlushIntervalMs <= 0 {
		return errors.New("flushIntervalMs must be positive")
	}
	if c.StreamWindowSize <= 0 {
		return errors.New("streamWindowSize must be positive")
	}
	return nil
}

// FlushInterval returns the flush window as a duration.
func (c Config) FlushInterval() time.Duration {
	return time.Duration(c.FlushIntervalMs) * time.Millisecond
}

// ResolvedAppName applies the AppName fallback chain: config, OML_APP_NAME,
// literal default.
func (c Config) ResolvedAppName() string {
	if c.AppName != "" {
		return c.AppName
	}
	if v := os.Getenv("OML_APP_NAME"); v != "" {
		return v
	}
	return DefaultAppName
}

// ResolvedEnvironment applies the Environment fallback chain: config,
// OML_ENVIRONMENT, literal default.
func (c Config) ResolvedEnvironment() string {
	if c.Environment != "" {
		return c.Environment
	}
	if v := os.Getenv("OML_ENVIRONMENT"); v != "" {
		return v
	}
	return DefaultEnvironment
}
