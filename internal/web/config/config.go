package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "MOTOSHOP"

// Config captures all runtime configuration for the storefront frontend.
type Config struct {
	Server  ServerConfig
	API     APIConfig
	Session SessionConfig
	Log     LogConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Addr         string        `envconfig:"HTTP_ADDR" default:":8080"`
	ReadTimeout  time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `envconfig:"HTTP_IDLE_TIMEOUT" default:"60s"`
	BaseURL      string        `envconfig:"PUBLIC_BASE_URL"`
	Environment  string        `envconfig:"ENV" default:"local"`
}

// APIConfig points the frontend at the remote REST backend. An empty base URL
// leaves the app running on static fallbacks only.
type APIConfig struct {
	BaseURL string        `envconfig:"API_BASE_URL"`
	Timeout time.Duration `envconfig:"API_TIMEOUT" default:"10s"`
}

// SessionConfig controls the signed session cookie that carries all persisted
// client state (token, profile, cart backup).
type SessionConfig struct {
	CookieName   string        `envconfig:"SESSION_COOKIE_NAME" default:"moto_session"`
	HashKey      string        `envconfig:"SESSION_HASH_KEY"`
	BlockKey     string        `envconfig:"SESSION_BLOCK_KEY"`
	CookieSecure bool          `envconfig:"SESSION_COOKIE_SECURE"`
	IdleTimeout  time.Duration `envconfig:"SESSION_IDLE_TIMEOUT" default:"30m"`
	Lifetime     time.Duration `envconfig:"SESSION_LIFETIME" default:"12h"`
}

// LogConfig controls logger verbosity.
type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

// ErrInvalidConfig wraps all configuration validation failures.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Load reads .env (best effort) and the environment into a validated Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("config: .env not found, relying on environment")
	}

	var cfg Config
	// Each section is processed on its own so the keys stay flat
	// (MOTOSHOP_HTTP_ADDR, not MOTOSHOP_SERVER_HTTP_ADDR).
	for _, section := range []any{&cfg.Server, &cfg.API, &cfg.Session, &cfg.Log} {
		if err := envconfig.Process(envPrefix, section); err != nil {
			return nil, fmt.Errorf("config: process environment: %w", err)
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.IsProduction() && strings.TrimSpace(c.Session.HashKey) == "" {
		return fmt.Errorf("%w: %s_SESSION_HASH_KEY is required outside local environments", ErrInvalidConfig, envPrefix)
	}
	if c.Session.BlockKey != "" {
		switch len(c.Session.BlockKey) {
		case 16, 24, 32:
		default:
			return fmt.Errorf("%w: session block key must be 16, 24 or 32 bytes", ErrInvalidConfig)
		}
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("%w: API timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// IsProduction reports whether the app runs in a deployed environment.
func (c *Config) IsProduction() bool {
	switch strings.ToLower(strings.TrimSpace(c.Server.Environment)) {
	case "", "local", "dev", "development", "test":
		return false
	default:
		return true
	}
}
