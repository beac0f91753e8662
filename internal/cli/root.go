// Package cli implements authctl, the operator client for the document
// platform backend. The session file under the user config dir is what keeps
// a login alive between invocations.
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/prefeitura-digital/authgate/internal/apiclient"
	"github.com/prefeitura-digital/authgate/internal/session"
	"github.com/prefeitura-digital/authgate/internal/tokenstore"
)

var (
	apiURL      string
	sessionPath string
)

var rootCmd = &cobra.Command{
	Use:   "authctl",
	Short: "Authenticate against the document platform backend",
	Long: `authctl manages a login session with the document platform backend.

The session (tokens plus user snapshot) is kept in a file under the user
config dir, so it survives between invocations until logout or expiry.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func init() {
	defaultAPI := os.Getenv("AUTHGATE_BACKEND_BASEURL")
	if defaultAPI == "" {
		defaultAPI = "http://localhost:8000/api/v1"
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api", defaultAPI, "backend base URL")
	rootCmd.PersistentFlags().StringVar(&sessionPath, "session-file", "", "session file path (default: user config dir)")
}

func store() (tokenstore.Store, error) {
	path := sessionPath
	if path == "" {
		var err error
		path, err = tokenstore.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return tokenstore.NewFile(path), nil
}

func newManager() (*session.Manager, tokenstore.Store, error) {
	st, err := store()
	if err != nil {
		return nil, nil, err
	}

	client := apiclient.New(apiURL, st, apiclient.WithOnSessionExpired(func() {
		fmt.Fprintln(os.Stderr, "Session expired, please log in again.")
	}))

	logger := zerolog.New(os.Stderr).Level(zerolog.WarnLevel)
	return session.NewManager(client, st, logger), st, nil
}

func newClient() (*apiclient.Client, tokenstore.Store, error) {
	st, err := store()
	if err != nil {
		return nil, nil, err
	}
	return apiclient.New(apiURL, st), st, nil
}
