package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/syndic-app/syndic/internal/app/finance"
	"github.com/syndic-app/syndic/internal/app/sync"
)

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(matrixCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the residence's financial position",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	var balance struct {
		Balance decimal.Decimal `json:"balance"`
	}
	if err := apiGet("/api/balance", &balance); err != nil {
		return err
	}
	var runway finance.Runway
	if err := apiGet("/api/metrics/runway", &runway); err != nil {
		return err
	}
	var recovery struct {
		RecoveryRate decimal.Decimal `json:"recovery_rate"`
	}
	if err := apiGet("/api/metrics/recovery", &recovery); err != nil {
		return err
	}
	var syncStatus sync.Status
	if err := apiGet("/api/sync/status", &syncStatus); err != nil {
		return err
	}

	currency := configCurrency()

	fmt.Printf("Balance:   %s\n", formatMoney(balance.Balance, currency))
	switch {
	case runway.Unbounded:
		fmt.Println("Runway:    unlimited (no recent expenses)")
	case runway.Projected:
		fmt.Printf("Runway:    %s months (projected from configured costs)\n", runway.Months.StringFixed(1))
	default:
		fmt.Printf("Runway:    %s months\n", runway.Months.StringFixed(1))
	}
	fmt.Printf("Recovery:  %s%%\n", recovery.RecoveryRate.StringFixed(1))

	fmt.Printf("Sync:      %d pending", syncStatus.Pending)
	if !syncStatus.LastSyncAt.IsZero() {
		fmt.Printf(", last sync %s", syncStatus.LastSyncAt.Local().Format(time.RFC3339))
	}
	if syncStatus.LastError != "" {
		fmt.Printf(", last error: %s", syncStatus.LastError)
	}
	fmt.Println()
	return nil
}

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Show the tricolor payment matrix",
	RunE:  runMatrix,
}

func runMatrix(cmd *cobra.Command, args []string) error {
	var matrix []finance.ResidentStatus
	if err := apiGet("/api/residents/matrix", &matrix); err != nil {
		return err
	}
	currency := configCurrency()

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "APT\tRESIDENT\tBALANCE\tSTATUS")
	for _, row := range matrix {
		fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\n",
			row.Apartment, row.FirstName, row.LastName,
			formatMoney(row.Balance, currency), row.Color)
	}
	return w.Flush()
}

// configCurrency reads the currency code from the daemon config, mapping
// the display code "DH" to ISO "MAD". Falls back to MAD.
func configCurrency() string {
	var cfg struct {
		Currency string `json:"currency"`
	}
	if err := apiGet("/api/config", &cfg); err != nil || cfg.Currency == "" {
		return money.MAD
	}
	if strings.EqualFold(cfg.Currency, "DH") {
		return money.MAD
	}
	return cfg.Currency
}

// formatMoney renders a decimal amount in the residence currency.
func formatMoney(amount decimal.Decimal, code string) string {
	currency := money.GetCurrency(code)
	if currency == nil {
		return amount.StringFixed(2) + " " + code
	}
	minor := amount.Shift(int32(currency.Fraction)).Round(0).IntPart()
	return money.New(minor, code).Display()
}
