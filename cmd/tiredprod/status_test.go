package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStatus_Properties(t *testing.T) {
	cmd := newStatusCmd()

	if cmd.Use != "status" {
		t.Errorf("Use = %q, want %q", cmd.Use, "status")
	}

	if !strings.Contains(cmd.Short, "status") {
		t.Error("Short description should mention status")
	}

	if !strings.Contains(cmd.Long, "health") {
		t.Error("Long description should mention health")
	}
}

func TestStatus_Flags(t *testing.T) {
	cmd := newStatusCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	output := buf.String()

	expectedFlags := []string{
		"--json",
		"--metrics-addr",
	}

	for _, flag := range expectedFlags {
		if !strings.Contains(output, flag) {
			t.Errorf("Help missing %q flag", flag)
		}
	}
}

func TestProbeDatabase_MissingURL(t *testing.T) {
	status := probeDatabase(context.Background(), "")

	if status.Component != "database" {
		t.Errorf("Component = %q, want %q", status.Component, "database")
	}
	if status.OK {
		t.Error("probe should fail without a database URL")
	}
	if !strings.Contains(status.Error, "DATABASE_URL") {
		t.Errorf("Error = %q, should mention DATABASE_URL", status.Error)
	}
}

// readinessServer starts an HTTP server answering the readiness probe with
// the given status code and returns its host:port.
func readinessServer(t *testing.T, code int) string {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz/readiness" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(code)
	}))
	t.Cleanup(srv.Close)

	return strings.TrimPrefix(srv.URL, "http://")
}

func TestProbeObservability(t *testing.T) {
	tests := []struct {
		name       string
		code       int
		wantOK     bool
		wantDetail string
	}{
		{name: "ready", code: http.StatusOK, wantOK: true, wantDetail: "ready"},
		{name: "not ready", code: http.StatusServiceUnavailable, wantOK: false, wantDetail: "not ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := readinessServer(t, tt.code)

			status := probeObservability(addr)

			if status.OK != tt.wantOK {
				t.Errorf("OK = %v, want %v", status.OK, tt.wantOK)
			}
			if status.Detail != tt.wantDetail {
				t.Errorf("Detail = %q, want %q", status.Detail, tt.wantDetail)
			}
		})
	}
}

func TestProbeObservability_Disabled(t *testing.T) {
	status := probeObservability("")

	if status.OK {
		t.Error("probe should fail when the listener is disabled")
	}
	if !strings.Contains(status.Error, "disabled") {
		t.Errorf("Error = %q, should mention disabled", status.Error)
	}
}

func TestProbeObservability_UnexpectedStatus(t *testing.T) {
	addr := readinessServer(t, http.StatusTeapot)

	status := probeObservability(addr)

	if status.OK {
		t.Error("probe should fail on unexpected status codes")
	}
	if !strings.Contains(status.Error, "418") {
		t.Errorf("Error = %q, should mention the status code", status.Error)
	}
}

func TestStatus_TableOutput(t *testing.T) {
	addr := readinessServer(t, http.StatusOK)
	t.Setenv("DATABASE_URL", "")

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"status", "--metrics-addr", addr})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	output := buf.String()

	if !strings.Contains(output, "database") {
		t.Error("Output should mention the database component")
	}
	if !strings.Contains(output, "observability") {
		t.Error("Output should mention the observability component")
	}
	if !strings.Contains(output, "ready") {
		t.Errorf("Output should report the listener as ready, got: %s", output)
	}
	if !strings.Contains(output, "DATABASE_URL") {
		t.Errorf("Output should report the missing database URL, got: %s", output)
	}
}

func TestStatus_JSONOutput(t *testing.T) {
	addr := readinessServer(t, http.StatusOK)
	t.Setenv("DATABASE_URL", "")

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"status", "--json", "--metrics-addr", addr})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var statuses []ComponentStatus
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &statuses); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if len(statuses) != 2 {
		t.Fatalf("got %d components, want 2", len(statuses))
	}
	if statuses[0].Component != "database" || statuses[1].Component != "observability" {
		t.Errorf("unexpected component order: %+v", statuses)
	}
	if !statuses[1].OK {
		t.Error("observability component should be OK")
	}
}
