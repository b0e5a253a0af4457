package config

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/precipitation-tracker/internal/weather"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type AppConfig struct {
	AppEnv   string     `validate:"oneof=dev prod"`
	LogLevel slog.Level `validate:"-"`
	Port     string     `validate:"required,numeric"`

	// Upstream NWS API.
	NWSBaseURL   string        `validate:"required,url"`
	NWSUserAgent string        `validate:"required"`
	HTTPTimeout  time.Duration `validate:"gt=0"`

	// CollectInterval controls how often a collection cycle runs.
	CollectInterval time.Duration `validate:"gte=1m"`
	// CollectTimeout bounds one whole cycle.
	CollectTimeout time.Duration `validate:"gt=0"`
	CollectWorkers int           `validate:"gte=1,lte=32"`

	// Optional circuit breaker per station, off when BreakerFailures is 0.
	BreakerFailures uint32
	BreakerCooldown time.Duration `validate:"gte=0,required_unless=BreakerFailures 0"`

	// Stations to collect.
	Stations weather.Registry `validate:"-"`

	StoreDriver   string `validate:"oneof=memory sqlite postgres"`
	StorePageSize int    `validate:"gte=1,lte=1000"`
	SQLitePath    string `validate:"required_if=StoreDriver sqlite"`
	DatabaseURL   string `validate:"required_if=StoreDriver postgres"`
}

var validate = validator.New()

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "err", err)
	}
	cfg := &AppConfig{}

	cfg.AppEnv = getenvDefault("APP_ENV", "dev")

	level, err := ParseLogLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.NWSBaseURL = getenvDefault("NWS_BASE_URL", "https://api.weather.gov")
	cfg.NWSUserAgent = getenvDefault("NWS_USER_AGENT", "PynewbPrecipitationTracker/1.0")

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.CollectInterval, err = getenvDuration("COLLECT_INTERVAL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.CollectTimeout, err = getenvDuration("COLLECT_TIMEOUT", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.CollectWorkers, err = getenvInt("COLLECT_WORKERS", 1); err != nil {
		return nil, err
	}

	failures, err := getenvInt("BREAKER_FAILURES", 0)
	if err != nil {
		return nil, err
	}
	if failures < 0 || int64(failures) > math.MaxUint32 {
		return nil, fmt.Errorf("invalid BREAKER_FAILURES: %d out of range", failures)
	}
	cfg.BreakerFailures = uint32(failures)
	if cfg.BreakerCooldown, err = getenvDuration("BREAKER_COOLDOWN", 30*time.Minute); err != nil {
		return nil, err
	}

	stations, err := loadStations(os.Getenv("STATIONS"))
	if err != nil {
		return nil, err
	}
	cfg.Stations = stations

	cfg.StoreDriver = strings.ToLower(getenvDefault("STORE_DRIVER", DriverMemory))
	if cfg.StorePageSize, err = getenvInt("STORE_PAGE_SIZE", 100); err != nil {
		return nil, err
	}
	cfg.SQLitePath = getenvDefault("SQLITE_PATH", "data/observations.db")
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadStations returns the default registry, or the subset named in a
// comma-separated list.
func loadStations(list string) (weather.Registry, error) {
	reg := weather.DefaultRegistry()
	if strings.TrimSpace(list) == "" {
		return reg, nil
	}

	var ids []string
	for _, id := range strings.Split(list, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	sub, err := reg.Subset(ids...)
	if err != nil {
		return weather.Registry{}, fmt.Errorf("invalid STATIONS: %w", err)
	}
	return sub, nil
}

func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
