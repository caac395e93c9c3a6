package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the tiredprod CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tiredprod",
		Short: "Tired Productions - identity and session service",
		Long: `Tired Productions identity service: passwordless email OTP
authentication, remember-me sessions, and the site-wide gate.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewCleanupCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}
