package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusRenew bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored session without calling the backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, st, err := newClient()
		if err != nil {
			return err
		}

		rec, held, err := st.Get(cmd.Context())
		if err != nil {
			return err
		}
		if !held {
			fmt.Println("No session stored.")
			return nil
		}

		fmt.Println("Session stored.")
		if rec.User != nil {
			fmt.Printf("  user:          %s <%s> (%s)\n", rec.User.Name, rec.User.Email, rec.User.Role)
		}
		fmt.Printf("  refresh token: %t\n", rec.RefreshToken != "")

		if statusRenew {
			if _, err := client.Refresh(cmd.Context()); err != nil {
				return fmt.Errorf("renew access token: %w", err)
			}
			fmt.Println("  access token renewed.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusRenew, "renew", false, "renew the access token using the refresh token")
}
