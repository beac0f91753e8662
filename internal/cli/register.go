package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prefeitura-digital/authgate/internal/apiclient"
)

var registerInput apiclient.RegisterInput

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Request a new account (subject to approval)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, _, err := newManager()
		if err != nil {
			return err
		}

		if err := manager.Register(cmd.Context(), registerInput); err != nil {
			return err
		}

		// Registration does not sign the account in; approval may be pending.
		fmt.Printf("Registration submitted for %s. Log in once the account is approved.\n", registerInput.Email)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
	registerCmd.Flags().StringVar(&registerInput.Name, "name", "", "full name")
	registerCmd.Flags().StringVar(&registerInput.Email, "email", "", "email address")
	registerCmd.Flags().StringVar(&registerInput.Password, "password", "", "password")
	registerCmd.Flags().StringVar(&registerInput.Department, "department", "", "department")
	registerCmd.Flags().StringVar(&registerInput.Role, "role", "viewer", "requested role (admin, editor, viewer)")
	registerCmd.Flags().StringVar(&registerInput.Phone, "phone", "", "phone number")

	for _, required := range []string{"name", "email", "password", "department", "phone"} {
		_ = registerCmd.MarkFlagRequired(required)
	}
}
