package config

import (
	"os"
	"strconv"
)

// FromEnv overlays OML_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("OML_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("OML_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("OML_APP_NAME"); v != "" {
		cfg.AppName = v
	}
	if v := os.Getenv("OML_ENVIRONMENT"); v != "" {
		cfg.Environment = v
	}
	if v := os.Getenv("OML_FLUSH_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.FlushIntervalMs = n
		}
	}
	if v := os.Getenv("OML_STREAM_WINDOW_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.StreamWindowSize = n
		}
	}
	if v := os.Getenv("OML_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("OML_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
}
