package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/schematic-core/internal/infrastructure/config"
	"github.com/nerrad567/schematic-core/internal/infrastructure/database"
)

func newMigrateCmd(configPath func() string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long: `Apply the schema migrations built into this binary to the database
named by database.path. serve does this on startup; migrate lets an operator
run, inspect or roll back the schema without starting the API.

Examples:
  schematic migrate            # apply pending migrations
  schematic migrate status     # list applied and pending migrations
  schematic migrate down -n 1  # roll back the newest migration`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd.Context(), configPath(), func(ctx context.Context, db *database.DB) error {
				if err := db.Migrate(ctx); err != nil {
					return err
				}
				return printMigrationStatus(ctx, cmd.OutOrStdout(), db)
			})
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "List applied and pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDatabase(cmd.Context(), configPath(), func(ctx context.Context, db *database.DB) error {
					return printMigrationStatus(ctx, cmd.OutOrStdout(), db)
				})
			},
		},
		newMigrateDownCmd(configPath),
	)
	return cmd
}

func newMigrateDownCmd(configPath func() string) *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1")
			}
			return withDatabase(cmd.Context(), configPath(), func(ctx context.Context, db *database.DB) error {
				n, err := db.MigrateDown(ctx, steps)
				fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", n)
				return err
			})
		},
	}
	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "number of migrations to roll back")
	return cmd
}

func withDatabase(ctx context.Context, configPath string, fn func(context.Context, *database.DB) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close() //nolint:errcheck // read/migrate only, errors already reported
	return fn(ctx, db)
}

func printMigrationStatus(ctx context.Context, w io.Writer, db *database.DB) error {
	status, err := db.MigrationStatus(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tNAME\tAPPLIED")
	for _, st := range status {
		applied := "pending"
		if st.Applied {
			applied = st.AppliedAt.Local().Format(time.DateTime)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", st.Version, st.Name, applied)
	}
	return tw.Flush()
}
