// Package robot talks to the liquid-handling robot's HTTP API.
package robot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/labplan/pkg/config"
	"github.com/GoSim-25-26J-441/labplan/pkg/logger"
	"github.com/GoSim-25-26J-441/labplan/pkg/utils"
)

// VersionHeader carries the API version on every request
const VersionHeader = "opentrons-version"

// ErrNotConfigured is returned by tools when no robot is configured
var ErrNotConfigured = errors.New("robot API not configured")

// StatusError is a non-2xx response from the robot
type StatusError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("robot %s returned status %d: %s", e.Path, e.StatusCode, e.Body)
}

// Client issues read-only requests against the robot API with retries
type Client struct {
	baseURL    string
	apiVersion string
	httpClient *http.Client
	backoff    utils.BackoffStrategy
	maxRetries int
	breaker    *breaker
	logger     *slog.Logger
}

// NewClient creates a client from the robot config section
func NewClient(cfg *config.RobotConfig) (*Client, error) {
	if cfg == nil || cfg.BaseURL == "" {
		return nil, ErrNotConfigured
	}
	timeout, err := cfg.GetTimeout()
	if err != nil {
		return nil, fmt.Errorf("invalid robot timeout: %w", err)
	}
	cooldown, err := cfg.GetBreakerCooldown()
	if err != nil {
		return nil, fmt.Errorf("invalid robot breaker cooldown: %w", err)
	}
	version := cfg.APIVersion
	if version == "" {
		version = "2"
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiVersion: version,
		httpClient: &http.Client{Timeout: timeout},
		backoff:    utils.BackoffFromConfig(cfg.Backoff, cfg.BaseMs, 0),
		maxRetries: cfg.MaxRetries,
		breaker:    newBreaker(cfg.BreakerFailures, cooldown),
		logger:     logger.Component("robot"),
	}, nil
}

// Health returns the robot's /health document
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.get(ctx, "/health", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Instruments returns the attached pipettes and modules
func (c *Client) Instruments(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.get(ctx, "/instruments", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Protocols returns the protocols stored on the robot
func (c *Client) Protocols(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.get(ctx, "/protocols", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// get fetches path into out. Transport failures and 5xx responses that
// survive the retries count against the endpoint's breaker.
func (c *Client) get(ctx context.Context, path string, out any) error {
	if !c.breaker.allow(path) {
		return fmt.Errorf("%w: %s", ErrCircuitOpen, path)
	}

	err := c.fetch(ctx, path, out)
	switch {
	case err == nil:
		c.breaker.recordSuccess(path)
	case ctx.Err() != nil:
		c.breaker.abort(path)
	case isUnavailable(err):
		c.breaker.recordFailure(path)
		if c.breaker.state(path) == BreakerOpen {
			c.logger.Warn("robot circuit opened", "path", path)
		}
	default:
		c.breaker.recordSuccess(path)
	}
	return err
}

func isUnavailable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500
	}
	var decodeErr *decodeError
	return !errors.As(err, &decodeErr)
}

type decodeError struct {
	path string
	err  error
}

func (e *decodeError) Error() string {
	return fmt.Sprintf("failed to decode %s response: %v", e.path, e.err)
}

func (e *decodeError) Unwrap() error { return e.err }

func (c *Client) fetch(ctx context.Context, path string, out any) error {
	return utils.Retry(ctx, c.backoff, c.maxRetries, func(attempt int) error {
		if attempt > 0 {
			c.logger.Debug("retrying robot request", "path", path, "attempt", attempt)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return utils.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set(VersionHeader, c.apiVersion)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Warn("robot request failed", "path", path, "attempt", attempt+1, "error", err)
			return fmt.Errorf("HTTP request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
			statusErr := &StatusError{Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
			if resp.StatusCode >= 500 {
				return statusErr
			}
			return utils.Permanent(statusErr)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return utils.Permanent(&decodeError{path: path, err: err})
		}
		return nil
	})
}

// BreakerState reports the circuit state for an API path such as "/health"
func (c *Client) BreakerState(path string) BreakerState {
	return c.breaker.state(path)
}

// Timeout reports the per-request timeout
func (c *Client) Timeout() time.Duration {
	return c.httpClient.Timeout
}
