// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServiceName != "mexc-bookticker" {
		t.Errorf("ServiceName = %q", cfg.ServiceName)
	}
	if cfg.MEXC.WSURL != "wss://wbs-api.mexc.com/ws" {
		t.Errorf("WSURL = %q", cfg.MEXC.WSURL)
	}
	if cfg.MEXC.Symbol != "JUMPUSDT" || cfg.MEXC.Interval != "100ms" {
		t.Errorf("symbol/interval = %q/%q", cfg.MEXC.Symbol, cfg.MEXC.Interval)
	}
	if cfg.MEXC.PingInterval != 20*time.Second {
		t.Errorf("PingInterval = %v; want 20s", cfg.MEXC.PingInterval)
	}
	if !cfg.Decode.Enabled {
		t.Error("decode.enabled must default to true")
	}
	if cfg.MEXC.Backoff.InitialInterval != 3*time.Second {
		t.Errorf("Backoff.InitialInterval = %v; want 3s", cfg.MEXC.Backoff.InitialInterval)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte(`
mexc:
  symbol: BTCUSDT
  interval: 10ms
decode:
  enabled: false
logging:
  level: debug
`)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MEXC.Symbol != "BTCUSDT" {
		t.Errorf("Symbol = %q; want BTCUSDT", cfg.MEXC.Symbol)
	}
	if cfg.MEXC.Interval != "10ms" {
		t.Errorf("Interval = %q; want 10ms", cfg.MEXC.Interval)
	}
	if cfg.Decode.Enabled {
		t.Error("decode.enabled must be overridden to false")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q; want debug", cfg.Logging.Level)
	}
}

func TestLoad_InvalidInterval(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("mexc:\n  interval: 5ms\n"), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unsupported interval")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
