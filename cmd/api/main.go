// Package main provides the entrypoint for the air-quality forecast API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/breatheroute/aqforecast/internal/api"
	"github.com/breatheroute/aqforecast/internal/api/handler"
	"github.com/breatheroute/aqforecast/internal/api/middleware"
	"github.com/breatheroute/aqforecast/internal/app"
	"github.com/breatheroute/aqforecast/internal/config"
	"github.com/breatheroute/aqforecast/internal/gazetteer"
	"github.com/breatheroute/aqforecast/internal/provider/resilience"
	"github.com/breatheroute/aqforecast/internal/telemetry"
	"github.com/breatheroute/aqforecast/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log := zerolog.New(os.Stderr).With().Timestamp().Logger()
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := cfg.Logger(app.ServiceName, Version)
	log.Info().
		Str("build_time", BuildTime).
		Msg("starting forecast API")

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    app.ServiceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
		SampleRatio:    cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()
	if cfg.Telemetry.Enabled {
		log.Info().
			Str("otlp_endpoint", cfg.Telemetry.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	metrics, err := middleware.NewMetrics(tp.Meter)
	if err != nil {
		return err
	}

	engine, err := app.BuildEngine(ctx, cfg, app.EngineOptions{
		Logger: log,
		Meter:  tp.Meter,
		Feeds:  resilience.GlobalRegistry,
	})
	if err != nil {
		return err
	}
	log.Info().
		Str("mode", string(engine.Mode())).
		Str("reason", engine.Reason()).
		Int("features", len(engine.Schema())).
		Msg("forecast engine ready")

	var overview handler.OverviewSource
	if cfg.Sweep.Enabled {
		scheduler, err := worker.NewScheduler(ctx, worker.SchedulerConfig{
			Job:      app.NewSweep(cfg, engine, log),
			Schedule: cfg.Sweep.Schedule,
			Logger:   log,
		})
		if err != nil {
			return err
		}
		scheduler.Start(ctx)
		defer func() { <-scheduler.Stop().Done() }()
		overview = scheduler
	}

	router := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		Metrics:     metrics,
		Engine:      engine,
		Cities:      gazetteer.Default(),
		Overview:    overview,
		Feeds:       resilience.GlobalRegistry,
		CORSOrigins: cfg.Server.CORSOrigins,
		RateLimit:   cfg.Server.RateLimit,
		RequireTLS:  cfg.Server.RequireTLS,
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
