package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetNewPassword string

var forgotPasswordCmd = &cobra.Command{
	Use:   "forgot-password <email>",
	Short: "Request a password reset email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient()
		if err != nil {
			return err
		}

		message, err := client.ForgotPassword(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(message)
		return nil
	},
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password <token>",
	Short: "Redeem a password reset token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient()
		if err != nil {
			return err
		}

		message, err := client.ResetPassword(cmd.Context(), args[0], resetNewPassword)
		if err != nil {
			return err
		}
		fmt.Println(message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(forgotPasswordCmd)
	rootCmd.AddCommand(resetPasswordCmd)
	resetPasswordCmd.Flags().StringVar(&resetNewPassword, "password", "", "new password")
	_ = resetPasswordCmd.MarkFlagRequired("password")
}
