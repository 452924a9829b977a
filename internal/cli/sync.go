package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	syncapp "github.com/syndic-app/syndic/internal/app/sync"
)

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.AddCommand(syncPullCmd)
	syncCmd.AddCommand(syncPushCmd)
	syncCmd.AddCommand(syncStatusCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the local store with the remote mirror",
}

var syncPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Merge the full remote dataset into the local store",
	RunE: func(cmd *cobra.Command, args []string) error {
		var status syncapp.Status
		if err := apiPost("/api/sync/pull", map[string]string{}, &status); err != nil {
			return err
		}
		fmt.Println("pull complete")
		return nil
	},
}

var syncPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Deliver pending local writes to the remote mirror",
	RunE: func(cmd *cobra.Command, args []string) error {
		var result struct {
			Delivered int `json:"delivered"`
			Pending   int `json:"pending"`
		}
		if err := apiPost("/api/sync/push", map[string]string{}, &result); err != nil {
			return err
		}
		fmt.Printf("delivered %d, %d still pending\n", result.Delivered, result.Pending)
		return nil
	},
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the sync state",
	RunE: func(cmd *cobra.Command, args []string) error {
		var status syncapp.Status
		if err := apiGet("/api/sync/status", &status); err != nil {
			return err
		}
		fmt.Printf("pending:    %d\n", status.Pending)
		if status.PullActive {
			fmt.Println("pull:       running")
		}
		if !status.LastSyncAt.IsZero() {
			fmt.Printf("last sync:  %s\n", status.LastSyncAt.Local().Format(time.RFC3339))
		}
		if status.LastError != "" {
			fmt.Printf("last error: %s\n", status.LastError)
		}
		return nil
	},
}
