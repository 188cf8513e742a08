package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPPort != "8080" || cfg.HistoryBackend != "memory" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.BusinessHoursStart != 8 || cfg.BusinessHoursEnd != 18 {
		t.Fatalf("unexpected business hours: %d-%d", cfg.BusinessHoursStart, cfg.BusinessHoursEnd)
	}
	if cfg.JWTRefreshTTL != 720*time.Hour {
		t.Fatalf("unexpected refresh ttl: %s", cfg.JWTRefreshTTL)
	}
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("HISTORY_BACKEND", "postgres")
	t.Setenv("DISPATCH_INTERVAL", "30s")
	t.Setenv("DAILY_PREP_CAP_MINUTES", "90")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPPort != "9090" || cfg.HistoryBackend != "postgres" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.DispatchInterval != 30*time.Second || cfg.DailyPrepCapMinutes != 90 {
		t.Fatalf("unexpected parsed values: %s %d", cfg.DispatchInterval, cfg.DailyPrepCapMinutes)
	}
}

func TestLoadConfig_BadValue(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected parse error")
	}
}
