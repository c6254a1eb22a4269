// Package main provides the texfmt command line.
package main

import (
	"os"

	"github.com/leapstack-labs/texfmt/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
