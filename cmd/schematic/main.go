// Schematic Core - circuit schematic editing service
//
// This is the main entry point. The serve command hosts the editing API;
// the other commands work on netlist files and tokens offline.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Each call returns fresh flag state.
func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "schematic",
		Short: "Circuit schematic editing service",
		Long: `Schematic Core hosts a circuit editor behind an HTTP API and works with
netlist files from the command line.

Examples:
  schematic serve                               # Run the editing API
  schematic migrate status                      # Inspect the database schema
  schematic netlist check amp.net               # Validate a netlist
  schematic netlist fmt amp.net > amp.canon.net # Rewrite in canonical form
  schematic token --subject bench --role editor # Mint an API token
  schematic watch                               # Follow change events over MQTT`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", getConfigPath(),
		"configuration file (env SCHEMATIC_CONFIG)")

	config := func() string { return configPath }
	root.AddCommand(
		newServeCmd(config),
		newMigrateCmd(config),
		newNetlistCmd(),
		newTokenCmd(config),
		newWatchCmd(config),
	)
	return root
}

// getConfigPath returns the configuration file path.
// Uses SCHEMATIC_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("SCHEMATIC_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
