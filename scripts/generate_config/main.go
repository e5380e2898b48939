// Package main prints the effective configuration, as loaded from the
// environment, in YAML with secrets masked.
// It can be run with: go run ./scripts/generate_config [output-file]
package main

import (
	"fmt"
	"os"

	"github.com/NomadCrew/feedback-tracker-backend/config"
	"github.com/NomadCrew/feedback-tracker-backend/logger"
)

func main() {
	logger.InitLogger()
	defer func() { _ = logger.Close() }()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	out, err := cfg.RedactedYAML()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling config: %v\n", err)
		os.Exit(1)
	}

	if len(os.Args) < 2 {
		fmt.Print(string(out))
		return
	}

	if err := os.WriteFile(os.Args[1], out, 0o600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing config file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Configuration written to %s\n", os.Args[1])
}
