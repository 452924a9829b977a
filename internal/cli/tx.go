package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/syndic-app/syndic/internal/domain"
)

func init() {
	rootCmd.AddCommand(txCmd)
	txCmd.AddCommand(txAddCmd)
	txCmd.AddCommand(txListCmd)

	txAddCmd.Flags().StringP("user", "u", "", "Resident id (required for COTISATION and PAIEMENT)")
	txAddCmd.Flags().StringP("amount", "a", "", "Amount, e.g. 250 or 99.50 (required)")
	txAddCmd.Flags().StringP("type", "t", "", "COTISATION, PAIEMENT or DEPENSE (required)")
	txAddCmd.Flags().StringP("label", "l", "", "Human description (required)")
	txAddCmd.Flags().StringP("method", "m", "", "Payment method for PAIEMENT (CASH, CHEQUE, TRANSFER, CARD, OTHER)")
	txAddCmd.Flags().String("provider", "", "Supplier name for DEPENSE")
	txAddCmd.Flags().String("category", "", "Expense category for DEPENSE")

	txListCmd.Flags().StringP("user", "u", "", "Only this resident's entries")
	txListCmd.Flags().StringP("type", "t", "", "Only this transaction type")
}

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Work with the transaction ledger",
}

var txAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Append a transaction to the ledger",
	RunE:  runTxAdd,
}

func runTxAdd(cmd *cobra.Command, args []string) error {
	user, _ := cmd.Flags().GetString("user")
	amount, _ := cmd.Flags().GetString("amount")
	txType, _ := cmd.Flags().GetString("type")
	label, _ := cmd.Flags().GetString("label")
	method, _ := cmd.Flags().GetString("method")
	provider, _ := cmd.Flags().GetString("provider")
	category, _ := cmd.Flags().GetString("category")

	if amount == "" || txType == "" || label == "" {
		return fmt.Errorf("--amount, --type and --label are required")
	}

	var created domain.Transaction
	err := apiPost("/api/transactions", map[string]string{
		"user_id":        user,
		"amount":         amount,
		"type":           txType,
		"label":          label,
		"payment_method": method,
		"provider":       provider,
		"category":       category,
	}, &created)
	if err != nil {
		return err
	}

	fmt.Printf("Recorded %s %s (%s)\n", created.Type, created.Amount, created.ID)
	return nil
}

var txListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ledger entries, newest first",
	RunE:  runTxList,
}

func runTxList(cmd *cobra.Command, args []string) error {
	user, _ := cmd.Flags().GetString("user")
	txType, _ := cmd.Flags().GetString("type")

	path := "/api/transactions?user_id=" + user + "&type=" + txType
	var txs []domain.Transaction
	if err := apiGet(path, &txs); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tTYPE\tAMOUNT\tRESIDENT\tLABEL")
	for _, tx := range txs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			tx.OccurredAt.Local().Format("2006-01-02"),
			tx.Type, tx.Amount, tx.UserID, tx.Label)
	}
	return w.Flush()
}
