package main

import (
	"os"

	"github.com/fatih/color"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		printer := color.New(color.FgRed)
		printer.Fprintf(os.Stderr, "Error: %v\n", err)

		os.Exit(1)
	}
}
