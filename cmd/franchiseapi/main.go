package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/neomorfeo/franchiseapi/internal/adapter/metrics"
	"github.com/neomorfeo/franchiseapi/internal/adapter/otel"
	"github.com/neomorfeo/franchiseapi/internal/app"
	"github.com/neomorfeo/franchiseapi/internal/config"
	"github.com/neomorfeo/franchiseapi/internal/logger"

	handler "github.com/neomorfeo/franchiseapi/internal/adapter/http"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "franchiseapi: %v\n", err)
		os.Exit(1)
	}
}

// run wires every adapter, serves HTTP until SIGINT or SIGTERM, then shuts
// down in reverse order.
func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	// --- Observability ---
	providers, err := otel.Setup(ctx, otel.Config{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: cfg.Telemetry.ServiceVersion,
		Environment:    cfg.Telemetry.Environment,
		Exporter:       cfg.Telemetry.Exporter,
		Insecure:       cfg.Telemetry.Environment == "development",
		Logger:         log,
	})
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Warn("otel shutdown failed", zap.Error(err))
		}
	}()

	m := metrics.New()

	// --- Adapters (out) ---
	store, err := openStore(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer store.close()

	base, closePublisher, err := newPublisher(ctx, cfg, store, log)
	if err != nil {
		return fmt.Errorf("events: %w", err)
	}
	defer closePublisher()

	publisher := otel.NewTracingPublisher(m.Publisher(base))
	franchises := otel.NewTracingFranchiseRepository(store.franchises)
	branches := otel.NewTracingBranchRepository(store.branches)
	products := otel.NewTracingProductRepository(store.products)

	// --- Application ---
	handlers := handler.Handlers{
		Franchises: app.NewFranchiseUseCase(franchises, publisher),
		Branches:   app.NewBranchUseCase(branches, franchises, publisher),
		Products:   app.NewProductUseCase(products, branches, publisher),
	}

	// --- Adapters (in) ---
	routerCfg := handler.RouterConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Version:     cfg.Telemetry.ServiceVersion,
		Logger:      log,
		Metrics:     m,
	}
	if cfg.Auth.Enabled {
		users, err := handler.ParseUsers(cfg.Auth.Users)
		if err != nil {
			return fmt.Errorf("auth: %w", err)
		}
		routerCfg.Auth = handler.NewAuthenticator(users, log)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.NewRouter(routerCfg, handlers),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// --- Server ---
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("franchiseapi listening",
			zap.String("addr", srv.Addr),
			zap.String("database", cfg.Database.Driver),
			zap.String("publisher", cfg.Events.Publisher),
			zap.String("docs", "http://localhost:"+cfg.Port+"/docs"),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("stopped")
	return nil
}
