// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tired Productions Contributors

package main

import (
	"context"

	"github.com/tiredprod/tiredprod/internal/auth/postgres"
	"github.com/tiredprod/tiredprod/internal/observability"
	"github.com/tiredprod/tiredprod/internal/store"
)

// ServeDeps contains injectable dependencies for the serve command.
// All fields with nil values will use their default implementations.
type ServeDeps struct {
	// PoolFactory creates a database pool from a URL.
	// Default: store.NewPool
	PoolFactory func(ctx context.Context, url string) (Pool, error)

	// ObservabilityServerFactory creates an observability server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer
}

func (d *ServeDeps) applyDefaults() {
	if d.PoolFactory == nil {
		d.PoolFactory = func(ctx context.Context, url string) (Pool, error) {
			return store.NewPool(ctx, url)
		}
	}
	if d.ObservabilityServerFactory == nil {
		d.ObservabilityServerFactory = func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, readinessChecker)
		}
	}
}

// Pool interface wraps the methods used by serve from pgxpool.Pool.
type Pool interface {
	postgres.PgxPool
	Ping(ctx context.Context) error
	Close()
}

// ObservabilityServer interface wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Metrics() *observability.Metrics
}
