package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syndic-app/syndic/internal/domain"
)

func init() {
	rootCmd.AddCommand(pinCmd)
	pinCmd.AddCommand(pinHashCmd)
	pinCmd.AddCommand(pinCheckCmd)

	pinCheckCmd.Flags().String("scope", "", "Residence credential: master, syndic or concierge")
	pinCheckCmd.Flags().StringP("user", "u", "", "Resident id to check against")
}

var pinCmd = &cobra.Command{
	Use:   "pin",
	Short: "Work with PIN credentials",
}

var pinHashCmd = &cobra.Command{
	Use:   "hash PIN",
	Short: "Print the stored digest of a PIN",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		digest := domain.HashPIN(args[0])
		if digest == "" {
			return fmt.Errorf("blank PIN has no digest")
		}
		fmt.Println(digest)
		return nil
	},
}

var pinCheckCmd = &cobra.Command{
	Use:   "check PIN",
	Short: "Validate a PIN against a stored credential via the daemon",
	Args:  cobra.ExactArgs(1),
	RunE:  runPinCheck,
}

func runPinCheck(cmd *cobra.Command, args []string) error {
	scope, _ := cmd.Flags().GetString("scope")
	user, _ := cmd.Flags().GetString("user")
	if scope == "" && user == "" {
		return fmt.Errorf("--scope or --user is required")
	}

	var result struct {
		Valid bool `json:"valid"`
	}
	err := apiPost("/api/auth/validate", map[string]string{
		"pin":     args[0],
		"scope":   scope,
		"user_id": user,
	}, &result)
	if err != nil {
		return err
	}
	if !result.Valid {
		return fmt.Errorf("pin rejected")
	}
	fmt.Println("pin accepted")
	return nil
}
