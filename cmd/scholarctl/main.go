// Command scholarctl runs maintenance tasks against the scholarship database.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"scholarship-backend/internal/config"
	"scholarship-backend/internal/infrastructure/db"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "scholarctl",
		Short:         "Maintenance commands for the scholarship backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd(), newSweepCmd())
	return root
}

// openDB loads config from the environment and connects.
func openDB() (*gorm.DB, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return db.OpenGorm(cfg.DBDriver, cfg.DSN(), cfg.DBLogLevel)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
