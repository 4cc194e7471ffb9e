package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	cfg := Load()
	if cfg.Port != "3001" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("expected default log level, got %s", cfg.LogLevel)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("expected wildcard CORS default, got %v", cfg.CORSAllowedOrigins)
	}
	if !cfg.MetricsEnabled {
		t.Fatal("expected metrics enabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgres://user@host/hospital")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://dashboard.example.jp, https://staging.example.jp")
	t.Setenv("METRICS_ENABLED", "false")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://user@host/hospital" {
		t.Fatalf("expected database url override, got %s", cfg.DatabaseURL)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://staging.example.jp" {
		t.Fatalf("expected two trimmed origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.MetricsEnabled {
		t.Fatal("expected metrics disabled")
	}
}
