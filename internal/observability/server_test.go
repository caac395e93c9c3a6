package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func startServer(t *testing.T, checker ReadinessChecker) *Server {
	t.Helper()
	server := NewServer("127.0.0.1:0", checker)

	if _, err := server.Start(); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Stop(ctx)
	})
	return server
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("failed to GET %s: %v", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func TestServer_Metrics(t *testing.T) {
	server := startServer(t, func() bool { return true })

	addr := server.Addr()
	if addr == "" {
		t.Fatal("server address is empty")
	}

	status, body := get(t, "http://"+addr+"/metrics")
	if status != http.StatusOK {
		t.Errorf("expected status 200, got %d", status)
	}

	// Prometheus exposition format with the runtime collectors.
	if !strings.Contains(body, "# HELP") {
		t.Error("expected Prometheus format with HELP comments")
	}
	if !strings.Contains(body, "go_") {
		t.Error("expected go_* metrics")
	}
	if !strings.Contains(body, "process_") {
		t.Error("expected process_* metrics")
	}

	// Increment custom metrics so they appear in output
	metrics := server.Metrics()
	metrics.GateAttemptsTotal.WithLabelValues("success").Inc()
	metrics.OTPIssuedTotal.Inc()
	metrics.OTPRedemptionTotal.WithLabelValues("invalid").Inc()
	metrics.LoginsTotal.WithLabelValues("true").Inc()
	metrics.TokenReauthsTotal.Inc()

	_, body2 := get(t, "http://"+addr+"/metrics")
	for _, name := range []string{
		"tiredprod_gate_attempts_total",
		"tiredprod_otp_issued_total",
		"tiredprod_otp_redemptions_total",
		"tiredprod_logins_total",
		"tiredprod_token_reauths_total",
	} {
		if !strings.Contains(body2, name) {
			t.Errorf("expected %s metric", name)
		}
	}
}

func TestServer_LivenessReturns200(t *testing.T) {
	server := startServer(t, nil)

	status, body := get(t, "http://"+server.Addr()+"/healthz/liveness")
	if status != http.StatusOK {
		t.Errorf("expected status 200, got %d", status)
	}
	if strings.TrimSpace(body) != "ok" {
		t.Errorf("expected body 'ok', got %q", body)
	}
}

func TestServer_Readiness(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		server := startServer(t, func() bool { return true })

		status, body := get(t, "http://"+server.Addr()+"/healthz/readiness")
		if status != http.StatusOK {
			t.Errorf("expected status 200, got %d", status)
		}
		if strings.TrimSpace(body) != "ok" {
			t.Errorf("expected body 'ok', got %q", body)
		}
	})

	t.Run("not ready", func(t *testing.T) {
		server := startServer(t, func() bool { return false })

		status, body := get(t, "http://"+server.Addr()+"/healthz/readiness")
		if status != http.StatusServiceUnavailable {
			t.Errorf("expected status 503, got %d", status)
		}
		if strings.TrimSpace(body) != "not ready" {
			t.Errorf("expected body 'not ready', got %q", body)
		}
	})

	t.Run("nil checker defaults to ready", func(t *testing.T) {
		server := startServer(t, nil)

		status, _ := get(t, "http://"+server.Addr()+"/healthz/readiness")
		if status != http.StatusOK {
			t.Errorf("expected status 200 with nil checker, got %d", status)
		}
	})
}

func TestServer_DoubleStartFails(t *testing.T) {
	server := startServer(t, nil)

	if _, err := server.Start(); err == nil {
		t.Error("expected error on second Start")
	}
}

func TestServer_StopWithoutStart(t *testing.T) {
	server := NewServer("127.0.0.1:0", nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		t.Errorf("Stop before Start should be a no-op, got %v", err)
	}
}

// The serve goroutine must exit once the server stops.
func TestServer_StopReleasesGoroutine(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	server := NewServer("127.0.0.1:0", nil)
	errCh, err := server.Start()
	if err != nil {
		t.Fatalf("failed to start server: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		t.Fatalf("failed to stop server: %v", err)
	}

	select {
	case _, ok := <-errCh:
		if ok {
			t.Error("expected closed channel without error")
		}
	case <-time.After(2 * time.Second):
		t.Error("error channel not closed after Stop")
	}
}
