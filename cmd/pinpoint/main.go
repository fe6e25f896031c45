package main

import (
	"os"

	"github.com/dkellner/pinpoint/cmd/pinpoint/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
