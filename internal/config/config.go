// Package config reads the server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the runtime configuration. A .env file in the working directory
// is loaded into the environment before parsing by the binary.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	ContentPath string `env:"PORTFOLIO_CONTENT"`
	Dev         bool   `env:"PORTFOLIO_DEV" envDefault:"false"`
	LogLevel    string `env:"PORTFOLIO_LOG_LEVEL" envDefault:"info"`

	RevealThreshold float64       `env:"PORTFOLIO_REVEAL_THRESHOLD" envDefault:"0.1"`
	SessionTTL      time.Duration `env:"PORTFOLIO_SESSION_TTL" envDefault:"30m"`
	ScrollStep      time.Duration `env:"PORTFOLIO_SCROLL_STEP" envDefault:"0s"`

	// IPSalt keys the client IP hash in request logs. Empty means a random
	// salt per process.
	IPSalt string `env:"PORTFOLIO_IP_SALT"`

	LiveRate  float64 `env:"PORTFOLIO_LIVE_RATE" envDefault:"50"`
	LiveBurst int     `env:"PORTFOLIO_LIVE_BURST" envDefault:"100"`
}

// Load parses and validates the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.RevealThreshold <= 0 || c.RevealThreshold > 1 {
		errs = append(errs, fmt.Errorf("PORTFOLIO_REVEAL_THRESHOLD must be in (0, 1], got %v", c.RevealThreshold))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("PORTFOLIO_SESSION_TTL must be positive, got %s", c.SessionTTL))
	}
	if c.ScrollStep < 0 {
		errs = append(errs, fmt.Errorf("PORTFOLIO_SCROLL_STEP must not be negative, got %s", c.ScrollStep))
	}
	if c.LiveRate <= 0 || c.LiveBurst <= 0 {
		errs = append(errs, errors.New("PORTFOLIO_LIVE_RATE and PORTFOLIO_LIVE_BURST must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Addr is the listen address.
func (c Config) Addr() string {
	return ":" + c.Port
}
