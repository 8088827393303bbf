package main

import (
	"os"

	"github.com/aakulov/divcast/cmd/divcast/commands"
)

// main is the entry point for the divcast CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
