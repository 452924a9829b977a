package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(chargesCmd)
	chargesCmd.AddCommand(chargesRunCmd)

	chargesRunCmd.Flags().String("month", "", "Month to charge, YYYY-MM (defaults to current)")
	chargesRunCmd.Flags().StringP("amount", "a", "", "Charge amount (defaults to the configured monthly fee)")
	chargesRunCmd.Flags().StringP("label", "l", "", "Charge label")
}

var chargesCmd = &cobra.Command{
	Use:   "charges",
	Short: "Manage monthly resident charges",
}

var chargesRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Charge every resident for a month (already-charged residents are skipped)",
	RunE:  runChargesRun,
}

func runChargesRun(cmd *cobra.Command, args []string) error {
	month, _ := cmd.Flags().GetString("month")
	amount, _ := cmd.Flags().GetString("amount")
	label, _ := cmd.Flags().GetString("label")

	body := map[string]string{}
	if month != "" {
		body["month"] = month
	}
	if amount != "" {
		body["amount"] = amount
	}
	if label != "" {
		body["label"] = label
	}

	var result struct {
		Month   string `json:"month"`
		Created int    `json:"created"`
	}
	if err := apiPost("/api/charges/generate", body, &result); err != nil {
		return err
	}
	fmt.Printf("Charged %d resident(s) for %s\n", result.Created, result.Month)
	return nil
}
