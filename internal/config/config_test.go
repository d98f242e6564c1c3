package config

import (
	"os"
	"testing"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	os.Setenv(key, value)
	t.Cleanup(func() {
		if had {
			os.Setenv(key, old)
		} else {
			os.Unsetenv(key)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, "DATABASE_URL", "postgres://localhost/carelink_test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.AlertSuppressionMinutes != 15 {
		t.Errorf("expected default suppression window 15, got %d", cfg.AlertSuppressionMinutes)
	}
	if cfg.RefundFullHours != 48 {
		t.Errorf("expected default full-refund cutoff 48h, got %d", cfg.RefundFullHours)
	}
	if !cfg.IsDev() {
		t.Error("expected development mode by default")
	}
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	setEnv(t, "DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Error("expected error when DATABASE_URL is missing")
	}
}

func TestValidate_ProductionRequiresIssuer(t *testing.T) {
	cfg := &Config{Env: "production", AlertTTLMinutes: 60}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for production without AUTH_ISSUER")
	}

	cfg.AuthIssuer = "https://auth.example.com/realms/carelink"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_RefundTiers(t *testing.T) {
	cfg := &Config{Env: "development", AlertTTLMinutes: 60, RefundPartialPct: 120}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for refund percentage above 100")
	}

	cfg = &Config{Env: "development", AlertTTLMinutes: 60, RefundFullHours: 6, RefundPartialHours: 24}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for inverted refund tiers")
	}
}

func TestValidate_AlertKnobs(t *testing.T) {
	cfg := &Config{Env: "development", AlertTTLMinutes: 0}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero alert TTL")
	}

	cfg = &Config{Env: "development", AlertTTLMinutes: 60, AlertSuppressionMinutes: -1}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative suppression window")
	}
}
