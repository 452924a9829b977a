// Package cli implements the syndic command line. The daemon owns the
// store; every other command talks to it over the local HTTP API.
package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var (
	configPath string
	apiBase    string
)

var rootCmd = &cobra.Command{
	Use:   "syndic",
	Short: "Residence finance daemon",
	Long: `Syndic keeps a residential association's books: an append-only
transaction ledger, per-resident balances, monthly charges, and
a tricolor payment status for every resident. All data lives in a
local sqlite store; a remote mirror is synced in the background
when one is configured.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "Path to the TOML config file")
	rootCmd.PersistentFlags().StringVar(&apiBase, "api", "http://127.0.0.1:8787", "Base URL of the running daemon")
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".syndic", "config.toml")
}

// ─── Daemon API Client ──────────────────────────────────────────────────────

func apiGet(path string, out any) error {
	resp, err := http.Get(apiBase + path)
	if err != nil {
		return fmt.Errorf("is the daemon running? %w", err)
	}
	defer resp.Body.Close()
	return decodeAPIResponse(resp, out)
}

func apiPost(path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := http.Post(apiBase+path, "application/json", strings.NewReader(string(payload)))
	if err != nil {
		return fmt.Errorf("is the daemon running? %w", err)
	}
	defer resp.Body.Close()
	return decodeAPIResponse(resp, out)
}

func decodeAPIResponse(resp *http.Response, out any) error {
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("%s", apiErr.Error.Message)
		}
		return fmt.Errorf("daemon returned status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
