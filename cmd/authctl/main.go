package main

import (
	"os"

	"github.com/prefeitura-digital/authgate/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
