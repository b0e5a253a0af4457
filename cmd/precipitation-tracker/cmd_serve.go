package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/precipitation-tracker/internal/api/http"
	"github.com/i474232898/precipitation-tracker/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the collection scheduler and the read API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	service, st, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	sched := scheduler.New(service, cfg.CollectInterval, cfg.CollectTimeout)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	app := httpapi.NewApp(appName)
	httpapi.RegisterRoutes(app, service)

	go func() {
		slog.Info("listening", "port", cfg.Port, "stations", cfg.Stations.Len(), "store", cfg.StoreDriver)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("fiber server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("error during shutdown", "err", err)
	}
	return nil
}
