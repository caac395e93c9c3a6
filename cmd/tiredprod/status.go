// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tired Productions Contributors

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tiredprod/tiredprod/internal/config"
)

// probeTimeout bounds each status probe.
const probeTimeout = 2 * time.Second

// ComponentStatus holds the probe result for one dependency.
type ComponentStatus struct {
	Component string `json:"component"`
	OK        bool   `json:"ok"`
	Detail    string `json:"detail,omitempty"`
	Error     string `json:"error,omitempty"`
}

// statusConfig holds configuration for the status command.
type statusConfig struct {
	jsonOutput  bool
	metricsAddr string
}

// newStatusCmd creates the status subcommand with all flags configured.
func newStatusCmd() *cobra.Command {
	cfg := &statusConfig{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show status of the service's dependencies",
		Long:  `Probe the PostgreSQL database and the observability listener and report their health.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, cfg)
		},
	}

	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output status as JSON")
	cmd.Flags().StringVar(&cfg.metricsAddr, "metrics-addr", config.DefaultMetricsAddr, "metrics/health HTTP address to probe")

	return cmd
}

// runStatus executes the status command.
func runStatus(cmd *cobra.Command, cfg *statusConfig) error {
	_ = godotenv.Load()

	statuses := []ComponentStatus{
		probeDatabase(cmd.Context(), os.Getenv("DATABASE_URL")),
		probeObservability(cfg.metricsAddr),
	}

	var output string
	var err error

	if cfg.jsonOutput {
		output, err = formatStatusJSON(statuses)
		if err != nil {
			return fmt.Errorf("failed to format JSON: %w", err)
		}
	} else {
		output = formatStatusTable(statuses)
	}

	cmd.Println(output)
	return nil
}

// probeDatabase pings the database with a single bounded attempt.
func probeDatabase(ctx context.Context, databaseURL string) ComponentStatus {
	status := ComponentStatus{Component: "database"}

	if databaseURL == "" {
		status.Error = "DATABASE_URL not set"
		return status
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		status.Error = fmt.Sprintf("failed to create pool: %v", err)
		return status
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		status.Error = fmt.Sprintf("failed to ping: %v", err)
		return status
	}

	status.OK = true
	status.Detail = "reachable"
	return status
}

// probeObservability checks the readiness endpoint of the metrics listener.
func probeObservability(addr string) ComponentStatus {
	status := ComponentStatus{Component: "observability"}

	if addr == "" {
		status.Error = "metrics listener disabled"
		return status
	}

	client := &http.Client{Timeout: probeTimeout}
	resp, err := client.Get(fmt.Sprintf("http://%s/healthz/readiness", addr))
	if err != nil {
		status.Error = fmt.Sprintf("failed to connect: %v", err)
		return status
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		status.OK = true
		status.Detail = "ready"
	case http.StatusServiceUnavailable:
		status.Detail = "not ready"
	default:
		status.Error = fmt.Sprintf("unexpected status %d", resp.StatusCode)
	}

	return status
}

// formatStatusTable formats the statuses as a human-readable table.
func formatStatusTable(statuses []ComponentStatus) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(w, "COMPONENT\tSTATUS\tDETAIL")
	_, _ = fmt.Fprintln(w, "---------\t------\t------")

	for _, status := range statuses {
		state := "down"
		detail := status.Error
		if status.OK {
			state = "ok"
			detail = status.Detail
		} else if status.Detail != "" {
			state = "degraded"
			detail = status.Detail
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", status.Component, state, detail)
	}

	_ = w.Flush()
	return buf.String()
}

// formatStatusJSON formats the statuses as JSON.
func formatStatusJSON(statuses []ComponentStatus) (string, error) {
	data, err := json.MarshalIndent(statuses, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal status: %w", err)
	}
	return string(data), nil
}
