package config

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/i474232898/precipitation-tracker/internal/weather"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.AppEnv != "dev" || cfg.LogLevel != slog.LevelInfo || cfg.Port != "8080" {
		t.Fatalf("unexpected basics: %+v", cfg)
	}
	if cfg.NWSBaseURL != "https://api.weather.gov" || cfg.NWSUserAgent != "PynewbPrecipitationTracker/1.0" {
		t.Fatalf("unexpected upstream config: %s %s", cfg.NWSBaseURL, cfg.NWSUserAgent)
	}
	if cfg.HTTPTimeout != 10*time.Second || cfg.CollectInterval != 10*time.Minute || cfg.CollectWorkers != 1 {
		t.Fatalf("unexpected timings: %+v", cfg)
	}
	if cfg.Stations.Len() != 13 {
		t.Fatalf("expected the 13 default stations, got %d", cfg.Stations.Len())
	}
	if cfg.StoreDriver != DriverMemory || cfg.StorePageSize != 100 {
		t.Fatalf("unexpected store config: %s %d", cfg.StoreDriver, cfg.StorePageSize)
	}
	if cfg.BreakerFailures != 0 || cfg.BreakerCooldown != 30*time.Minute {
		t.Fatalf("unexpected breaker config: %d %s", cfg.BreakerFailures, cfg.BreakerCooldown)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PORT", "9090")
	t.Setenv("COLLECT_INTERVAL", "15m")
	t.Setenv("COLLECT_WORKERS", "4")
	t.Setenv("STATIONS", "kmke, KGRB")
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/obs.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.AppEnv != "prod" || cfg.LogLevel != slog.LevelDebug || cfg.Port != "9090" {
		t.Fatalf("unexpected basics: %+v", cfg)
	}
	if cfg.CollectInterval != 15*time.Minute || cfg.CollectWorkers != 4 {
		t.Fatalf("unexpected collection config: %s %d", cfg.CollectInterval, cfg.CollectWorkers)
	}
	if cfg.Stations.Len() != 2 || cfg.Stations.All()[0].ID != "KMKE" {
		t.Fatalf("unexpected stations %+v", cfg.Stations.All())
	}
	if cfg.StoreDriver != DriverSQLite || cfg.SQLitePath != "/tmp/obs.db" {
		t.Fatalf("unexpected store config: %s %s", cfg.StoreDriver, cfg.SQLitePath)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]map[string]string{
		"bad app env":              {"APP_ENV": "staging"},
		"bad log level":            {"LOG_LEVEL": "loud"},
		"bad interval":             {"COLLECT_INTERVAL": "often"},
		"interval too short":       {"COLLECT_INTERVAL": "10s"},
		"bad driver":               {"STORE_DRIVER": "dynamodb"},
		"postgres without url":     {"STORE_DRIVER": "postgres"},
		"too many workers":         {"COLLECT_WORKERS": "100"},
		"bad base url":             {"NWS_BASE_URL": "not a url"},
		"workers not a number":     {"COLLECT_WORKERS": "abc"},
		"page size not a number":   {"STORE_PAGE_SIZE": "lots"},
		"negative breaker":         {"BREAKER_FAILURES": "-1"},
		"breaker not a number":     {"BREAKER_FAILURES": "three"},
		"breaker without cooldown": {"BREAKER_FAILURES": "3", "BREAKER_COOLDOWN": "0s"},
		"negative cooldown":        {"BREAKER_COOLDOWN": "-1m"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %v", env)
			}
		})
	}
}

func TestLoadRejectsUnknownStation(t *testing.T) {
	t.Setenv("STATIONS", "KORD,KXXX")

	_, err := Load()
	if !errors.Is(err, weather.ErrUnknownStation) {
		t.Fatalf("expected ErrUnknownStation, got %v", err)
	}
	if !strings.Contains(err.Error(), "KXXX") {
		t.Fatalf("error should name the station: %v", err)
	}
}

func TestLoadBreakerOptIn(t *testing.T) {
	t.Setenv("BREAKER_FAILURES", "5")
	t.Setenv("BREAKER_COOLDOWN", "15m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BreakerFailures != 5 || cfg.BreakerCooldown != 15*time.Minute {
		t.Fatalf("unexpected breaker config: %d %s", cfg.BreakerFailures, cfg.BreakerCooldown)
	}
}

func TestLoadDisabledBreakerIgnoresCooldown(t *testing.T) {
	t.Setenv("BREAKER_COOLDOWN", "0s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BreakerFailures != 0 {
		t.Fatalf("breaker should be disabled, got %d failures", cfg.BreakerFailures)
	}
}
