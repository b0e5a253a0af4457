package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/i474232898/precipitation-tracker/internal/config"
	"github.com/i474232898/precipitation-tracker/internal/logging"
	"github.com/i474232898/precipitation-tracker/internal/store"
	"github.com/i474232898/precipitation-tracker/internal/weather"
	"github.com/i474232898/precipitation-tracker/internal/weather/providers"
)

const appName = "precipitation-tracker"

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Lake Michigan precipitation tracker",
	Long: `precipitation-tracker polls National Weather Service observation stations
around Lake Michigan, classifies precipitation and serves the results over HTTP.`,
	SilenceUsage: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads configuration and installs the process logger.
func setup() (*config.AppConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	slog.SetDefault(logging.New(cfg, version, appName))
	return cfg, nil
}

// newService wires the NWS provider and the configured store into a service.
// The caller closes the returned store.
func newService(ctx context.Context, cfg *config.AppConfig) (*weather.Service, store.Store, error) {
	st, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s store: %w", cfg.StoreDriver, err)
	}

	provider := providers.NewNWSProvider(providers.NewHTTPClient(cfg.HTTPTimeout), providers.NWSConfig{
		BaseURL:   cfg.NWSBaseURL,
		UserAgent: cfg.NWSUserAgent,
		Timeout:   cfg.HTTPTimeout,
		Breaker: providers.BreakerConfig{
			Failures: cfg.BreakerFailures,
			Cooldown: cfg.BreakerCooldown,
		},
	})

	service := weather.NewService(st, provider, cfg.Stations, weather.WithWorkers(cfg.CollectWorkers))
	return service, st, nil
}
