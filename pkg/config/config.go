// Package config loads the server settings from the environment
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the server needs at startup
type Config struct {
	Port  string `env:"PORT" envDefault:"8080"`
	Debug bool   `env:"DEBUG" envDefault:"false"`

	// MoveAllowance is the per-move clock, counted in whole seconds
	MoveAllowance time.Duration `env:"MOVE_ALLOWANCE" envDefault:"30s"`
	TickInterval  time.Duration `env:"TICK_INTERVAL" envDefault:"1s"`

	// MaxGames bounds the concurrent games; 0 means unlimited
	MaxGames int `env:"MAX_GAMES" envDefault:"0"`

	APIKeys        []string `env:"API_KEYS" envSeparator:","`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// Load parses the environment into a Config and validates it
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.APIKeys = trimAll(cfg.APIKeys)
	cfg.AllowedOrigins = trimAll(cfg.AllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate rejects settings the game cannot run with
func (c Config) Validate() error {
	var errs []error

	if c.AllowanceSeconds() <= 0 {
		errs = append(errs, errors.New("MOVE_ALLOWANCE must be at least one second"))
	}
	if c.TickInterval <= 0 {
		errs = append(errs, errors.New("TICK_INTERVAL must be positive"))
	}
	if c.MaxGames < 0 {
		errs = append(errs, errors.New("MAX_GAMES must not be negative"))
	}

	return errors.Join(errs...)
}

// AllowanceSeconds returns the per-move allowance in whole seconds
func (c Config) AllowanceSeconds() int {
	return int(c.MoveAllowance / time.Second)
}

// AllowsOrigin reports whether a websocket upgrade from origin is accepted
func (c Config) AllowsOrigin(origin string) bool {
	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	return false
}

func trimAll(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}

	return out
}
