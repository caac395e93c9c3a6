// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tired Productions Contributors

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/tiredprod/tiredprod/internal/auth"
	"github.com/tiredprod/tiredprod/internal/auth/postgres"
	"github.com/tiredprod/tiredprod/internal/config"
	"github.com/tiredprod/tiredprod/internal/logging"
	"github.com/tiredprod/tiredprod/internal/observability"
	transport "github.com/tiredprod/tiredprod/internal/transport/http"
)

// sweepInterval controls how often idle in-memory sessions are evicted.
// Expired database rows are reaped by the cleanup command instead.
const sweepInterval = 15 * time.Minute

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the identity HTTP service",
		Long: `Start the identity service: the site gate, OTP authentication,
and session endpoints, plus the metrics/health sidecar listener.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServeWithDeps(cmd.Context(), cmd, nil)
		},
	}

	cmd.Flags().String("listen-addr", config.DefaultListenAddr, "HTTP listen address")
	cmd.Flags().String("metrics-addr", config.DefaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("log-format", config.DefaultLogFormat, "log format (json or text)")
	cmd.Flags().String("database-url", "", "PostgreSQL connection URL")
	cmd.Flags().Bool("debug", false, "echo issued OTP codes in responses (development only)")

	return cmd
}

// runServeWithDeps starts the service with injectable dependencies.
// If deps is nil, default implementations are used.
func runServeWithDeps(ctx context.Context, cmd *cobra.Command, deps *ServeDeps) error {
	if deps == nil {
		deps = &ServeDeps{}
	}
	deps.applyDefaults()

	// Local development keeps secrets in .env; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logging.SetDefault("tiredprod", version, cfg.LogFormat)
	logger := slog.Default()

	logger.Info("starting identity service",
		"listen_addr", cfg.ListenAddr,
		"log_format", cfg.LogFormat,
		"debug", cfg.Debug,
	)

	pool, err := deps.PoolFactory(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	logger.Info("connected to database")

	users := postgres.NewUserRepository(pool)
	tokens := postgres.NewRememberTokenRepository(pool)
	challenges := postgres.NewOTPRepository(pool)

	sessions := auth.NewSessionManager()

	gate, err := auth.NewGate(cfg.GatePassphrase, cfg.GateSecret)
	if err != nil {
		return fmt.Errorf("configure gate: %w", err)
	}
	otpSvc, err := auth.NewOTPService(challenges)
	if err != nil {
		return fmt.Errorf("create OTP service: %w", err)
	}
	authSvc, err := auth.NewAuthServiceWithLogger(users, tokens, sessions, cfg.AdminEmails, logger)
	if err != nil {
		return fmt.Errorf("create auth service: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Start observability server if configured
	var obsServer ObservabilityServer
	var metrics *observability.Metrics
	if cfg.MetricsAddr != "" {
		obsServer = deps.ObservabilityServerFactory(cfg.MetricsAddr, func() bool {
			pingCtx, pingCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer pingCancel()
			return pool.Ping(pingCtx) == nil
		})
		metrics = obsServer.Metrics()

		obsErrChan, err := obsServer.Start()
		if err != nil {
			return fmt.Errorf("start observability server: %w", err)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
		logger.Info("observability server started", "addr", obsServer.Addr())
	} else {
		metrics = observability.NewMetrics(prometheus.NewRegistry())
	}

	handler, err := transport.NewHandler(gate, otpSvc, authSvc, sessions, metrics, logger, cfg.Debug)
	if err != nil {
		return fmt.Errorf("create HTTP handler: %w", err)
	}

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           transport.NewRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go runSweeper(ctx, logger, sessions)

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errChan <- serveErr
		}
	}()

	cmd.Println("Identity service started")
	logger.Info("identity service ready", "addr", cfg.ListenAddr)

	// Wait for shutdown signal or error
	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-errChan:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	// Graceful shutdown
	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("error stopping HTTP server", "error", err)
	}
	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			logger.Warn("error stopping observability server", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}

// runSweeper periodically evicts idle in-memory sessions.
func runSweeper(ctx context.Context, logger *slog.Logger, sessions *auth.SessionManager) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if idle := sessions.DestroyIdle(); idle > 0 {
			logger.Info("sweep complete", "idle_sessions", idle)
		}
	}
}

// monitorServerErrors cancels the run context when a background server fails.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			// Channel closed, server stopped gracefully
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
		// Context cancelled, exit monitoring
	}
}
