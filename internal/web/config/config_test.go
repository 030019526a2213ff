package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Session.CookieName != "moto_session" {
		t.Errorf("CookieName = %q", cfg.Session.CookieName)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Errorf("API timeout = %v", cfg.API.Timeout)
	}
	if cfg.IsProduction() {
		t.Error("default environment must not count as production")
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("MOTOSHOP_HTTP_ADDR", ":9999")
	t.Setenv("MOTOSHOP_API_BASE_URL", "http://backend:8081/api")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.API.BaseURL != "http://backend:8081/api" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
}

func TestProductionRequiresHashKey(t *testing.T) {
	t.Setenv("MOTOSHOP_ENV", "production")

	_, err := Load()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}

	t.Setenv("MOTOSHOP_SESSION_HASH_KEY", "0123456789abcdef0123456789abcdef")
	if _, err := Load(); err != nil {
		t.Fatalf("Load with hash key: %v", err)
	}
}

func TestBlockKeyLengthValidated(t *testing.T) {
	t.Setenv("MOTOSHOP_SESSION_BLOCK_KEY", "too-short")

	_, err := Load()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}
