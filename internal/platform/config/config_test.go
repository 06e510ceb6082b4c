package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 127.0.0.1
  port: 9090
database:
  path: /tmp/hookd-test.db
jwt:
  secret: test-secret
webhooks:
  worker_count: 8
  max_attempts: 5
  initial_delay: 30s
  static:
    - walker: CreateOrder
      direction: outbound
      url: https://example.com/hook
      secret: s3cr3t
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9090 {
		t.Errorf("server config = %+v", cfg.Server)
	}
	if cfg.Webhooks.WorkerCount != 8 || cfg.Webhooks.MaxAttempts != 5 || cfg.Webhooks.InitialDelay != 30*time.Second {
		t.Errorf("webhooks config = %+v", cfg.Webhooks)
	}
	if len(cfg.Webhooks.Static) != 1 || cfg.Webhooks.Static[0].Walker != "CreateOrder" {
		t.Errorf("static webhooks = %+v", cfg.Webhooks.Static)
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
jwt:
  secret: test-secret
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !cfg.Webhooks.Enabled {
		t.Error("webhooks should default to enabled")
	}
	if cfg.Webhooks.MaxAttempts != 3 || cfg.Webhooks.InitialDelay != 60*time.Second || cfg.Webhooks.MaxDelay != time.Hour {
		t.Errorf("retry defaults = %+v", cfg.Webhooks)
	}
	if cfg.Webhooks.BackoffMultiplier != 2.0 {
		t.Errorf("backoff multiplier = %v, want 2", cfg.Webhooks.BackoffMultiplier)
	}
	if cfg.RateLimit.InboundPerMinute != 600 || cfg.RateLimit.InboundBurst != 60 {
		t.Errorf("rate limit defaults = %+v", cfg.RateLimit)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() should fail for a missing file")
	}
}
