package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load("")

	if cfg.App.Port != "8080" {
		t.Errorf("App.Port = %s, want 8080", cfg.App.Port)
	}
	if cfg.JWT.ExpiryHours != 24*time.Hour {
		t.Errorf("JWT.ExpiryHours = %v, want 24h", cfg.JWT.ExpiryHours)
	}
	if cfg.Reminder.Interval != time.Hour {
		t.Errorf("Reminder.Interval = %v, want 1h", cfg.Reminder.Interval)
	}
	if cfg.Reminder.WindowDays != 3 {
		t.Errorf("Reminder.WindowDays = %d, want 3", cfg.Reminder.WindowDays)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 {
		t.Errorf("CORS.AllowedOrigins = %v, want 2 entries", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DUE_SCAN_INTERVAL", "15m")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , https://b.example ,")

	cfg := Load("")

	if cfg.App.Port != "9090" {
		t.Errorf("App.Port = %s, want 9090", cfg.App.Port)
	}
	if cfg.Reminder.Interval != 15*time.Minute {
		t.Errorf("Reminder.Interval = %v, want 15m", cfg.Reminder.Interval)
	}
	if cfg.RateLimit.RPS != 2.5 {
		t.Errorf("RateLimit.RPS = %v, want 2.5", cfg.RateLimit.RPS)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.CORS.AllowedOrigins) != len(want) {
		t.Fatalf("CORS.AllowedOrigins = %v, want %v", cfg.CORS.AllowedOrigins, want)
	}
	for i := range want {
		if cfg.CORS.AllowedOrigins[i] != want[i] {
			t.Errorf("CORS.AllowedOrigins[%d] = %s, want %s", i, cfg.CORS.AllowedOrigins[i], want[i])
		}
	}
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("APP_NAME=from-file\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("APP_NAME") })

	cfg := Load(path)
	if cfg.App.Name != "from-file" {
		t.Errorf("App.Name = %s, want from-file", cfg.App.Name)
	}
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: "5432", Name: "ledger", User: "app", Password: "p@ss", SSLMode: "disable"}
	want := "postgres://app:p%40ss@db:5432/ledger?sslmode=disable"
	if got := db.DSN(); got != want {
		t.Errorf("DSN() = %s, want %s", got, want)
	}
}
