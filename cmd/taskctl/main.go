// Package main is the entry point for the taskctl command line tool.
package main

import (
	"fmt"
	"os"

	"github.com/sakif/task-tracker/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
