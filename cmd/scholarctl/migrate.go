package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scholarship-backend/internal/infrastructure/db"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long: `Run gorm auto-migration for every table the API uses.

The database is chosen by DB_DRIVER and the matching connection settings,
read from the environment or a .env file in the working directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gdb, err := openDB()
			if err != nil {
				return err
			}
			if err := db.Migrate(gdb); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %d tables\n", len(db.Models()))
			return nil
		},
	}
}
