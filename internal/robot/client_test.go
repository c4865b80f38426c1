package robot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/GoSim-25-26J-441/labplan/pkg/config"
)

func newTestClient(t *testing.T, url string, retries int) *Client {
	t.Helper()
	c, err := NewClient(&config.RobotConfig{
		BaseURL:    url + "/",
		APIVersion: "3",
		Timeout:    "2s",
		MaxRetries: retries,
		Backoff:    "constant",
		BaseMs:     1,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient(nil); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := NewClient(&config.RobotConfig{BaseURL: "http://robot", Timeout: "soon"}); err == nil {
		t.Fatal("expected invalid timeout error")
	}
}

func TestNewClientDefaults(t *testing.T) {
	c, err := NewClient(&config.RobotConfig{BaseURL: "http://robot:31950"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if c.apiVersion != "2" || c.Timeout() != 10*time.Second {
		t.Fatalf("unexpected defaults: version=%s timeout=%s", c.apiVersion, c.Timeout())
	}
}

func TestClientSendsVersionHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get(VersionHeader); got != "3" {
			t.Errorf("expected version header 3, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"flex","robot_model":"OT-3 Standard"}`))
	}))
	defer srv.Close()

	health, err := newTestClient(t, srv.URL, 0).Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if health["name"] != "flex" {
		t.Fatalf("unexpected health %v", health)
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"mount":"left","instrumentName":"p300_single_flex"}]}`))
	}))
	defer srv.Close()

	out, err := newTestClient(t, srv.URL, 3).Instruments(context.Background())
	if err != nil {
		t.Fatalf("Instruments: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
	if _, ok := out["data"]; !ok {
		t.Fatalf("expected data field, got %v", out)
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "no such route", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL, 3).Protocols(context.Background())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 StatusError, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single attempt, got %d", calls.Load())
	}
}

func TestClientGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL, 2).Health(context.Background())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502 StatusError, got %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestClientBreakerShortCircuits(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, err := NewClient(&config.RobotConfig{
		BaseURL:         srv.URL,
		Timeout:         "2s",
		BreakerFailures: 2,
		BreakerCooldown: "1h",
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := c.Health(context.Background()); err == nil {
			t.Fatal("expected 503 error")
		}
	}
	if got := c.BreakerState("/health"); got != BreakerOpen {
		t.Fatalf("expected open breaker, got %s", got)
	}

	_, err = c.Health(context.Background())
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected open breaker to skip the request, got %d calls", calls.Load())
	}
	if got := c.BreakerState("/instruments"); got != BreakerClosed {
		t.Fatalf("expected other endpoints unaffected, got %s", got)
	}
}

func TestClientBreakerIgnoresClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad", http.StatusBadRequest)
	}))
	defer srv.Close()

	c, err := NewClient(&config.RobotConfig{BaseURL: srv.URL, BreakerFailures: 1})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, _ = c.Protocols(context.Background())
	if got := c.BreakerState("/protocols"); got != BreakerClosed {
		t.Fatalf("expected 4xx to leave the breaker closed, got %s", got)
	}
}
