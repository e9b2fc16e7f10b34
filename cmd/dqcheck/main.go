// Package main provides the dqcheck command-line interface.
package main

import (
	"os"

	"github.com/leapstack-labs/dqcheck/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
