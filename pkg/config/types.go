package config

import "time"

// Config is the labplan daemon configuration
type Config struct {
	LogLevel    string             `yaml:"log_level"`
	LogFormat   string             `yaml:"log_format"` // json or text
	Server      ServerConfig       `yaml:"server"`
	Deck        DeckConfig         `yaml:"deck"`
	Optimizer   OptimizerConfig    `yaml:"optimizer"`
	Robot       *RobotConfig       `yaml:"robot,omitempty"`
	PlateReader *PlateReaderConfig `yaml:"plate_reader,omitempty"`
}

// ServerConfig holds listen addresses for the tool transports
type ServerConfig struct {
	GRPCAddr string `yaml:"grpc_addr"`
	HTTPAddr string `yaml:"http_addr"`
}

// DeckConfig tunes deck layout checks
type DeckConfig struct {
	// AdjacencySeverity is "warning" (report and accept) or "error" (reject).
	AdjacencySeverity string `yaml:"adjacency_severity"`
}

// OptimizerConfig tunes the parameter grid search
type OptimizerConfig struct {
	Seed        int64 `yaml:"seed"` // 0 seeds from the clock
	Parallelism int   `yaml:"parallelism"`
	TopN        int   `yaml:"top_n"`
}

// RobotConfig points at the liquid-handling robot's HTTP API
type RobotConfig struct {
	BaseURL    string `yaml:"base_url"`
	APIVersion string `yaml:"api_version"`
	Timeout    string `yaml:"timeout"` // e.g. "10s"
	MaxRetries int    `yaml:"max_retries"`
	Backoff    string `yaml:"backoff"` // exponential, linear, constant
	BaseMs     int    `yaml:"base_ms"`

	// BreakerFailures consecutive failures open an endpoint's circuit; 0 disables it.
	BreakerFailures int    `yaml:"breaker_failures"`
	BreakerCooldown string `yaml:"breaker_cooldown"` // default 30s
}

// PlateReaderConfig points at the plate reader's REST bridge
type PlateReaderConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

// GetTimeout parses the robot timeout, defaulting to 10s when unset
func (r *RobotConfig) GetTimeout() (time.Duration, error) {
	return parseTimeout(r.Timeout)
}

// GetBreakerCooldown parses how long an open circuit rejects requests, defaulting to 30s
func (r *RobotConfig) GetBreakerCooldown() (time.Duration, error) {
	if r.BreakerCooldown == "" {
		return 30 * time.Second, nil
	}
	return time.ParseDuration(r.BreakerCooldown)
}

// GetTimeout parses the plate reader timeout, defaulting to 10s when unset
func (p *PlateReaderConfig) GetTimeout() (time.Duration, error) {
	return parseTimeout(p.Timeout)
}

func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 10 * time.Second, nil
	}
	return time.ParseDuration(s)
}

// Default returns the configuration used when no file is supplied
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "json",
		Server: ServerConfig{
			GRPCAddr: ":50051",
			HTTPAddr: ":8080",
		},
		Deck: DeckConfig{AdjacencySeverity: "warning"},
		Optimizer: OptimizerConfig{
			Parallelism: 4,
			TopN:        5,
		},
	}
}
