// Package daemon wires the syndic daemon together: configuration, the
// local store, the finance engine, the sync reconciler, and the HTTP API.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
)

// Config is the daemon configuration, loaded from TOML.
type Config struct {
	API     APIConfig     `toml:"api"`
	Storage StorageConfig `toml:"storage"`
	Remote  RemoteConfig  `toml:"remote"`
	Sync    SyncConfig    `toml:"sync"`
	Charges ChargesConfig `toml:"charges"`
	Log     LogConfig     `toml:"log"`
}

// APIConfig controls the HTTP listener.
type APIConfig struct {
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	Metrics bool   `toml:"metrics"`
}

// StorageConfig controls the local store location.
type StorageConfig struct {
	DataDir string `toml:"data_dir"`
}

// RemoteConfig points at the hosted mirror. An empty base URL runs the
// daemon fully offline.
type RemoteConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

// SyncConfig controls the reconciler cadence. Durations are strings like
// "30s" or "15m".
type SyncConfig struct {
	DrainInterval string `toml:"drain_interval"`
	PullInterval  string `toml:"pull_interval"`
	BackoffMin    string `toml:"backoff_min"`
}

// ChargesConfig controls automatic monthly charging. Amount empty or zero
// leaves automatic charging off; charges can still be run by hand.
type ChargesConfig struct {
	Amount        string `toml:"amount"`
	Label         string `toml:"label"`
	CheckInterval string `toml:"check_interval"`
}

// LogConfig controls log output.
type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig returns the daemon defaults.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:    "127.0.0.1",
			Port:    8787,
			Metrics: true,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Sync: SyncConfig{
			DrainInterval: "30s",
			PullInterval:  "15m",
			BackoffMin:    "1m",
		},
		Charges: ChargesConfig{
			Label:         "Cotisation mensuelle",
			CheckInterval: "1h",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads the TOML file at path over the defaults. A missing file
// is not an error — the defaults stand.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Addr returns the host:port the API listens on.
func (c APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DrainIntervalDuration parses the drain cadence, falling back to 30s.
func (c SyncConfig) DrainIntervalDuration() time.Duration {
	return parseDuration(c.DrainInterval, 30*time.Second)
}

// PullIntervalDuration parses the pull cadence, falling back to 15m.
// "0" disables periodic pulls.
func (c SyncConfig) PullIntervalDuration() time.Duration {
	return parseDuration(c.PullInterval, 15*time.Minute)
}

// BackoffMinDuration parses the first retry delay, falling back to 1m.
func (c SyncConfig) BackoffMinDuration() time.Duration {
	return parseDuration(c.BackoffMin, time.Minute)
}

// CheckIntervalDuration parses the charge check cadence, falling back to 1h.
func (c ChargesConfig) CheckIntervalDuration() time.Duration {
	return parseDuration(c.CheckInterval, time.Hour)
}

// AmountDecimal parses the configured charge amount; empty or malformed
// yields zero, which keeps automatic charging off.
func (c ChargesConfig) AmountDecimal() decimal.Decimal {
	if c.Amount == "" {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(c.Amount)
	if err != nil {
		return decimal.Zero
	}
	return amount
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".syndic"
	}
	return filepath.Join(home, ".syndic")
}
