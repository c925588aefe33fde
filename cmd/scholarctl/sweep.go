package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"scholarship-backend/internal/adapter/repository/mysql"
	"scholarship-backend/internal/usecase/program"
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep-deadlines",
		Short: "Deactivate programs whose application deadline has passed",
		Long: `Run the deadline sweep once, outside the API's cron schedule.

Examples:
  scholarctl sweep-deadlines
  scholarctl sweep-deadlines --timeout 30s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			timeout, _ := cmd.Flags().GetDuration("timeout")

			gdb, err := openDB()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			// sweeping never deletes, so no deleter is wired
			uc := program.NewUsecase(mysql.NewGormUoW(gdb).Repos().Programs, nil)
			n, err := uc.SweepDeadlines(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deactivated %d program(s)\n", n)
			return nil
		},
	}
	cmd.Flags().Duration("timeout", time.Minute, "abort the sweep after this long")
	return cmd
}
