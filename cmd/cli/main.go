// Package main is the entry point for the basket-rules CLI.
package main

import (
	"os"

	"basket-rules/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
