package config

import (
	"fmt"
	"net/url"
	"os"
)

// LoadConfig loads and parses a configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := ParseConfigYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// validateConfig performs validation on the configuration
func validateConfig(cfg *Config) error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return fmt.Errorf("invalid log_format: %s (must be json or text)", cfg.LogFormat)
	}

	if cfg.Server.GRPCAddr == "" && cfg.Server.HTTPAddr == "" {
		return fmt.Errorf("server: at least one of grpc_addr or http_addr must be set")
	}

	if err := validateDeck(&cfg.Deck); err != nil {
		return fmt.Errorf("deck validation failed: %w", err)
	}
	if err := validateOptimizer(&cfg.Optimizer); err != nil {
		return fmt.Errorf("optimizer validation failed: %w", err)
	}
	if cfg.Robot != nil {
		if err := validateRobot(cfg.Robot); err != nil {
			return fmt.Errorf("robot validation failed: %w", err)
		}
	}
	if cfg.PlateReader != nil {
		if err := validateBaseURL(cfg.PlateReader.BaseURL); err != nil {
			return fmt.Errorf("plate_reader validation failed: %w", err)
		}
		if _, err := cfg.PlateReader.GetTimeout(); err != nil {
			return fmt.Errorf("plate_reader validation failed: invalid timeout %s: %w", cfg.PlateReader.Timeout, err)
		}
	}

	return nil
}

func validateDeck(d *DeckConfig) error {
	switch d.AdjacencySeverity {
	case "warning", "error":
		return nil
	default:
		return fmt.Errorf("invalid adjacency_severity: %s (must be warning or error)", d.AdjacencySeverity)
	}
}

func validateOptimizer(o *OptimizerConfig) error {
	if o.Parallelism <= 0 {
		return fmt.Errorf("parallelism must be positive, got %d", o.Parallelism)
	}
	if o.TopN <= 0 {
		return fmt.Errorf("top_n must be positive, got %d", o.TopN)
	}
	return nil
}

func validateRobot(r *RobotConfig) error {
	if err := validateBaseURL(r.BaseURL); err != nil {
		return err
	}
	if _, err := r.GetTimeout(); err != nil {
		return fmt.Errorf("invalid timeout %s: %w", r.Timeout, err)
	}
	if _, err := r.GetBreakerCooldown(); err != nil {
		return fmt.Errorf("invalid breaker_cooldown %s: %w", r.BreakerCooldown, err)
	}
	if r.BreakerFailures < 0 {
		return fmt.Errorf("breaker_failures cannot be negative, got %d", r.BreakerFailures)
	}
	if r.MaxRetries < 0 {
		return fmt.Errorf("max_retries cannot be negative, got %d", r.MaxRetries)
	}
	if r.BaseMs < 0 {
		return fmt.Errorf("base_ms cannot be negative, got %d", r.BaseMs)
	}
	validBackoffs := map[string]bool{
		"":            true,
		"exponential": true,
		"linear":      true,
		"constant":    true,
	}
	if !validBackoffs[r.Backoff] {
		return fmt.Errorf("invalid backoff type: %s (must be exponential, linear, or constant)", r.Backoff)
	}
	return nil
}

func validateBaseURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("base_url cannot be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid base_url %s: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url %s must use http or https", raw)
	}
	return nil
}
