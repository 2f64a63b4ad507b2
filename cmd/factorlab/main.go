package main

import (
	"os"

	"github.com/wonny/factorlab/cmd/factorlab/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
