package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_RequiresDSNAndSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PG_DSN", "")
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("TRAIN_STATION_CONFIG", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without DSN")
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/train_station")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without JWT secret")
	}
}

func TestLoad_YAMLOverridesEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/train_station")
	t.Setenv("AUTH_JWT_SECRET", "env-secret")
	t.Setenv("MAX_TICKETS_PER_ORDER", "10")

	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "booking:\n  max_tickets_per_order: 3\njourneys:\n  allow_past_departures: true\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TRAIN_STATION_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Booking.MaxTicketsPerOrder != 3 {
		t.Fatalf("expected yaml override, got %d", cfg.Booking.MaxTicketsPerOrder)
	}
	if !cfg.Journeys.AllowPastDepartures {
		t.Fatal("expected allow_past_departures from yaml")
	}
	if cfg.JWTSecret != "env-secret" {
		t.Fatalf("expected env secret kept, got %q", cfg.JWTSecret)
	}
}
