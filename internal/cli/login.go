package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	loginPassword string
	loginRemember bool
)

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Log in and persist the session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email := args[0]

		password := loginPassword
		if password == "" {
			fmt.Fprint(os.Stderr, "Password: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			password = strings.TrimSpace(line)
		}
		if password == "" {
			return errors.New("password is required")
		}

		manager, _, err := newManager()
		if err != nil {
			return err
		}

		if err := manager.Login(cmd.Context(), email, password, loginRemember); err != nil {
			return err
		}

		snap := manager.Snapshot()
		fmt.Printf("Logged in as %s <%s> (%s)\n", snap.User.Name, snap.User.Email, snap.User.Role)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password (prompted when omitted)")
	loginCmd.Flags().BoolVar(&loginRemember, "remember", false, "request a long-lived session")
}
