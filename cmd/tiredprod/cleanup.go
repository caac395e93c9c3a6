// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tired Productions Contributors

package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/tiredprod/tiredprod/internal/auth/postgres"
	"github.com/tiredprod/tiredprod/internal/store"
)

// NewCleanupCmd creates the cleanup subcommand.
func NewCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete expired remember tokens and OTP challenges",
		Long: `Delete expired remember tokens and OTP challenges from the database.
Reads are already filtered to unexpired rows, so this is housekeeping,
not enforcement. Run it from cron or by hand.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()

			databaseURL := os.Getenv("DATABASE_URL")
			if databaseURL == "" {
				return oops.Code("CONFIG_INVALID").Errorf("DATABASE_URL environment variable is required")
			}

			ctx := cmd.Context()

			cmd.Println("Connecting to database...")
			pool, err := store.NewPool(ctx, databaseURL)
			if err != nil {
				return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
			}
			defer pool.Close()

			return runCleanup(ctx, cmd, pool)
		},
	}
}

// runCleanup purges expired rows through the repositories.
func runCleanup(ctx context.Context, cmd *cobra.Command, pool postgres.PgxPool) error {
	tokens, err := postgres.NewRememberTokenRepository(pool).DeleteExpired(ctx)
	if err != nil {
		return oops.Code("CLEANUP_FAILED").With("operation", "delete expired remember tokens").Wrap(err)
	}

	challenges, err := postgres.NewOTPRepository(pool).DeleteExpired(ctx)
	if err != nil {
		return oops.Code("CLEANUP_FAILED").With("operation", "delete expired OTP challenges").Wrap(err)
	}

	cmd.Printf("Deleted %d expired remember tokens and %d expired OTP challenges\n", tokens, challenges)
	return nil
}
