package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/adapter/httpserver"
	"github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/adapter/metrics"
	"github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/app"
	"github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/broadcast"
	"github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/catalog"
	"github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/platform/config"
	"github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/platform/logging"
	"github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/state"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

// serveOptions are flag overrides applied on top of the environment.
type serveOptions struct {
	port        string
	catalogPath string
}

func (o *serveOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.port, "port", "p", "", "Listen port (overrides PORT)")
	cmd.Flags().StringVar(&o.catalogPath, "catalog", "", "YAML fabric catalogue (overrides CATALOG_PATH)")
}

func setupConfig(opts serveOptions) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if opts.port != "" {
		cfg.Port = opts.port
	}
	if opts.catalogPath != "" {
		cfg.CatalogPath = opts.catalogPath
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func hubHealthCheck(hub *broadcast.Hub) httpserver.HealthCheck {
	return httpserver.HealthCheck{
		Name: "broadcast_hub",
		Check: func(_ context.Context) error {
			if hub.ChannelCount() < 0 {
				return errors.New("broadcast hub is stopped or did not answer")
			}
			return nil
		},
	}
}

func serve(ctx context.Context, opts serveOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := setupConfig(opts)
	if err != nil {
		return err
	}

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	clock := clockwork.NewRealClock()

	reg := metrics.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(reg)
	wsMetrics := metrics.NewWebSocketMetrics(reg)
	storeMetrics := metrics.NewStoreMetrics(reg)

	store := state.NewStore(clock, storeMetrics)

	hub := broadcast.NewHub(clock, wsMetrics, broadcast.Options{
		MaxChannels:    cfg.MaxWebSocketConnections,
		SendBuffer:     cfg.WebSocketSendBuffer,
		WriteTimeout:   cfg.WebSocketWriteTimeout,
		AllowedOrigins: cfg.AllowedOrigins,
		Development:    cfg.IsDevelopment(),
	})
	defer hub.Stop()

	appSvc := app.NewService(store, hub)

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return err
	}
	if report := cat.Check(); len(report.Skipped) > 0 {
		slog.Warn("Catalog has descriptors that will be ignored", "skipped", report.Skipped)
	}
	appSvc.Initialize(ctx, cat.Fabrics, cat.Sections, nil)

	srv := httpserver.NewServer(cfg, appSvc, hub, metrics.Handler(reg), httpMetrics,
		[]httpserver.HealthCheck{hubHealthCheck(hub)})

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-sigCtx.Done():
	}

	slog.Info("Shutdown signal received, cleaning up...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}
	hub.Stop()

	return nil
}
