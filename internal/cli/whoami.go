package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/prefeitura-digital/authgate/internal/roles"
)

var whoamiJSON bool

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user, revalidating the session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, _, err := newManager()
		if err != nil {
			return err
		}

		manager.CurrentUser(cmd.Context())
		snap := manager.Snapshot()
		if !snap.Authenticated {
			return errors.New("not logged in")
		}

		if whoamiJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(snap.User)
		}

		evaluator := roles.NewEvaluator(snap.User, snap.Authenticated)
		fmt.Printf("%s <%s>\n", snap.User.Name, snap.User.Email)
		fmt.Printf("  role:       %s (admin=%t editor=%t viewer=%t)\n",
			snap.User.Role, evaluator.IsAdmin(), evaluator.IsEditor(), evaluator.IsViewer())
		fmt.Printf("  department: %s\n", snap.User.Department)
		fmt.Printf("  status:     %s\n", snap.User.Status)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
	whoamiCmd.Flags().BoolVar(&whoamiJSON, "json", false, "print the user as JSON")
}
