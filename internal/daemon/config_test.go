package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "127.0.0.1")
	}
	if cfg.API.Port != 8787 {
		t.Errorf("API.Port = %d, want %d", cfg.API.Port, 8787)
	}
	if !cfg.API.Metrics {
		t.Error("API.Metrics should be true by default")
	}
	if cfg.Storage.DataDir == "" {
		t.Error("Storage.DataDir should default to a home path")
	}
	if cfg.Remote.BaseURL != "" {
		t.Error("Remote.BaseURL should be empty by default (offline)")
	}
	if cfg.Charges.Amount != "" {
		t.Error("Charges.Amount should be empty by default (auto charging off)")
	}
	if cfg.Sync.DrainInterval != "30s" {
		t.Errorf("Sync.DrainInterval = %q, want %q", cfg.Sync.DrainInterval, "30s")
	}
}

func TestLoadConfig_MissingFileKeepsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.API.Port != 8787 {
		t.Errorf("API.Port = %d, want default", cfg.API.Port)
	}
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[api]
port = 9000
metrics = false

[remote]
base_url = "https://mirror.example.com"
api_key = "k"

[sync]
pull_interval = "5m"
backoff_min = "10s"

[charges]
amount = "250"
label = "Cotisation"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.API.Port != 9000 {
		t.Errorf("API.Port = %d, want 9000", cfg.API.Port)
	}
	if cfg.API.Metrics {
		t.Error("API.Metrics should be overridden to false")
	}
	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want untouched default", cfg.API.Host)
	}
	if cfg.Remote.BaseURL != "https://mirror.example.com" {
		t.Errorf("Remote.BaseURL = %q", cfg.Remote.BaseURL)
	}
	if got := cfg.Sync.PullIntervalDuration(); got != 5*time.Minute {
		t.Errorf("PullIntervalDuration() = %v, want 5m", got)
	}
	if got := cfg.Sync.BackoffMinDuration(); got != 10*time.Second {
		t.Errorf("BackoffMinDuration() = %v, want 10s", got)
	}
	if !cfg.Charges.AmountDecimal().Equal(decimal.RequireFromString("250")) {
		t.Errorf("AmountDecimal() = %s, want 250", cfg.Charges.AmountDecimal())
	}
}

func TestDurationFallbacks(t *testing.T) {
	bad := SyncConfig{DrainInterval: "soon", PullInterval: "", BackoffMin: "-"}
	if got := bad.DrainIntervalDuration(); got != 30*time.Second {
		t.Errorf("DrainIntervalDuration() = %v, want fallback 30s", got)
	}
	if got := bad.PullIntervalDuration(); got != 15*time.Minute {
		t.Errorf("PullIntervalDuration() = %v, want fallback 15m", got)
	}
	if got := bad.BackoffMinDuration(); got != time.Minute {
		t.Errorf("BackoffMinDuration() = %v, want fallback 1m", got)
	}
}

func TestChargesAmountDecimal(t *testing.T) {
	if !(ChargesConfig{}).AmountDecimal().IsZero() {
		t.Error("empty amount should parse to zero")
	}
	if !(ChargesConfig{Amount: "abc"}).AmountDecimal().IsZero() {
		t.Error("malformed amount should parse to zero")
	}
	if got := (ChargesConfig{Amount: "99.50"}).AmountDecimal(); !got.Equal(decimal.RequireFromString("99.5")) {
		t.Errorf("AmountDecimal() = %s, want 99.5", got)
	}
}

func TestAddr(t *testing.T) {
	if got := (APIConfig{Host: "0.0.0.0", Port: 8080}).Addr(); got != "0.0.0.0:8080" {
		t.Errorf("Addr() = %q", got)
	}
}
