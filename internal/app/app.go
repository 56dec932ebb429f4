// Package app assembles the forecast engine and sweep from configuration.
// It is shared by the HTTP server and the command-line tool.
package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"

	"github.com/breatheroute/aqforecast/internal/airquality"
	"github.com/breatheroute/aqforecast/internal/airquality/cpcb"
	"github.com/breatheroute/aqforecast/internal/config"
	"github.com/breatheroute/aqforecast/internal/database"
	"github.com/breatheroute/aqforecast/internal/forecast"
	"github.com/breatheroute/aqforecast/internal/forest"
	"github.com/breatheroute/aqforecast/internal/gazetteer"
	"github.com/breatheroute/aqforecast/internal/provider/resilience"
	"github.com/breatheroute/aqforecast/internal/worker"
)

// ServiceName identifies the service in logs and telemetry.
const ServiceName = "aqforecast-api"

// StationSource builds the configured observation source. The returned
// release func frees any connection held by the source and is never nil.
// A database that cannot be reached degrades to airquality.NoSource.
func StationSource(ctx context.Context, cfg *config.Config, feeds *resilience.Registry, logger zerolog.Logger) (airquality.ObservationSource, func()) {
	noop := func() {}

	switch cfg.Model.StationSource {
	case config.SourceCSV:
		return airquality.NewCSVSource(cfg.Model.StationCSVPath, logger), noop

	case config.SourcePostgres:
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			logger.Warn().Err(err).Msg("station database unavailable")
			return airquality.NoSource{}, noop
		}
		logger.Info().
			Str("host", cfg.Database.Host).
			Str("database", cfg.Database.Database).
			Msg("station database connected")
		return airquality.NewPostgresSource(pool), pool.Close

	case config.SourceHTTP:
		return cpcb.NewClient(cpcb.ClientConfig{
			BaseURL:  cfg.Model.StationFeedURL,
			APIKey:   cfg.Model.StationFeedAPIKey,
			Registry: feeds,
			Timeout:  cfg.Model.StationFeedTimeout,
		}), noop
	}

	return airquality.NoSource{}, noop
}

// EngineOptions are the runtime hooks of BuildEngine.
type EngineOptions struct {
	Logger zerolog.Logger
	Meter  metric.Meter

	// Feeds receives station feed health. Default: resilience.GlobalRegistry.
	Feeds *resilience.Registry

	// Now is the engine clock. Default: time.Now.
	Now func() time.Time
}

// BuildEngine loads training data, fits the backend when possible and
// returns the immutable engine. Unavailable inputs downgrade to heuristic
// mode instead of failing.
func BuildEngine(ctx context.Context, cfg *config.Config, opts EngineOptions) (*forecast.Engine, error) {
	feeds := opts.Feeds
	if feeds == nil {
		feeds = resilience.GlobalRegistry
	}

	var source airquality.ObservationSource = airquality.NoSource{}
	release := func() {}
	if cfg.Model.Enabled {
		source, release = StationSource(ctx, cfg, feeds, opts.Logger)
	}
	defer release()

	state := forecast.Bootstrap(ctx, forecast.BootstrapConfig{
		ModelEnabled:  cfg.Model.Enabled,
		Source:        source,
		CovariateDir:  cfg.Model.CovariateDir,
		MaxCovariates: cfg.Model.MaxCovariates,
		Forest: forest.Config{
			Trees:           cfg.Model.Trees,
			MaxDepth:        cfg.Model.MaxDepth,
			MinSamplesSplit: forest.DefaultConfig().MinSamplesSplit,
			Seed:            cfg.Model.Seed,
		},
		MinObservations: cfg.Model.MinStations,
		Logger:          opts.Logger,
	})

	return forecast.NewEngine(state, forecast.Options{Now: opts.Now, Meter: opts.Meter})
}

// NewSweep builds the sweep job over every unique gazetteer city.
func NewSweep(cfg *config.Config, engine worker.Forecaster, logger zerolog.Logger) *worker.SweepJob {
	return worker.NewSweepJob(worker.SweepJobConfig{
		Config: worker.SweepConfig{
			Days:        cfg.Sweep.Days,
			Concurrency: cfg.Sweep.Concurrency,
			Timeout:     cfg.Sweep.Timeout,
		},
		Engine: engine,
		Cities: gazetteer.Default().Unique(),
		Logger: logger,
	})
}
