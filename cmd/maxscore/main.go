// Package main provides the entry point for the maxscore CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/Sumatoshi-tech/maxscore/cmd/maxscore/commands"
)

func main() {
	err := commands.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
