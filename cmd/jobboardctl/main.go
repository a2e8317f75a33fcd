// Package main provides operator commands for the job board backend.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jobboard-backend/internal/bootstrap"
	"jobboard-backend/internal/shared/config"
)

var rootCmd = &cobra.Command{
	Use:           "jobboardctl",
	Short:         "Job board operator tooling",
	Long:          "jobboardctl runs schema migrations and inspects or removes job applications directly against the configured database.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// buildApp requires a real database; the in-memory fallback is useless for operator commands.
func buildApp() (*bootstrap.App, error) {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	return bootstrap.Build(cfg)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
