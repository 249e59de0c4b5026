package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "oml.yaml")
	body := "serverUrl: http://collector:9090\napiKey: sk-test\nflushIntervalMs: 500\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServerURL != "http://collector:9090" || cfg.APIKey != "sk-test" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.FlushIntervalMs != 500 {
		t.Fatalf("flushIntervalMs not applied: %d", cfg.FlushIntervalMs)
	}
	if cfg.StreamWindowSize != 5000 {
		t.Fatalf("default streamWindowSize lost: %d", cfg.StreamWindowSize)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("want defaults, got %+v", cfg)
	}
}

func TestFromEnvOverlay(t *testing.T) {
	t.Setenv("OML_SERVER_URL", "http://env:8080")
	t.Setenv("OML_FLUSH_INTERVAL_MS", "250")
	t.Setenv("OML_STREAM_WINDOW_SIZE", "bogus")
	cfg := Default()
	FromEnv(&cfg)
	if cfg.ServerURL != "http://env:8080" {
		t.Fatalf("env url not applied: %q", cfg.ServerURL)
	}
	if cfg.FlushIntervalMs != 250 {
		t.Fatalf("env flush interval not applied: %d", cfg.FlushIntervalMs)
	}
	if cfg.StreamWindowSize != 5000 {
		t.Fatalf("invalid env value should be ignored: %d", cfg.StreamWindowSize)
	}
}

func TestResolvedFallbacks(t *testing.T) {
	t.Setenv("OML_APP_NAME", "")
	t.Setenv("OML_ENVIRONMENT", "")
	cfg := Default()
	if got := cfg.ResolvedAppName(); got != DefaultAppName {
		t.Fatalf("want %q, got %q", DefaultAppName, got)
	}
	if got := cfg.ResolvedEnvironment(); got != DefaultEnvironment {
		t.Fatalf("want %q, got %q", DefaultEnvironment, got)
	}

	t.Setenv("OML_APP_NAME", "from-env")
	if got := cfg.ResolvedAppName(); got != "from-env" {
		t.Fatalf("env fallback not applied: %q", got)
	}

	cfg.AppName = "explicit"
	if got := cfg.ResolvedAppName(); got != "explicit" {
		t.Fatalf("config should win over env: %q", got)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error without serverUrl")
	}
	cfg.ServerURL = "http://collector"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
}
