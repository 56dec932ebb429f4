package forecast

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/breatheroute/aqforecast/internal/airquality"
	"github.com/breatheroute/aqforecast/internal/covariate"
	"github.com/breatheroute/aqforecast/internal/forest"
)

// Mode says which estimator the engine uses.
type Mode string

const (
	ModeTrained   Mode = "trained"
	ModeHeuristic Mode = "heuristic"
)

// DefaultMinObservations is the fewest stations a fit is attempted with.
const DefaultMinObservations = 2

// Downgrade reasons reported in State.Reason.
const (
	ReasonModelDisabled     = "model disabled"
	ReasonSourceUnavailable = "station source unavailable"
	ReasonTooFewStations    = "too few station observations"
	ReasonFitFailed         = "model fit failed"
)

// Backend maps a feature vector in schema order to a raw PM2.5 estimate.
type Backend interface {
	Predict(v []float64) float64
}

// State is the outcome of startup. It is built once and never mutated.
type State struct {
	Mode    Mode
	Reason  string
	Schema  Schema
	Grid    *covariate.Grid
	Backend Backend

	// Stations and R2 describe the fit; zero in heuristic mode.
	Stations int
	R2       float64
}

// HeuristicState is a State with no trained backend.
func HeuristicState(reason string) *State {
	return &State{Mode: ModeHeuristic, Reason: reason, Schema: BaseSchema()}
}

// TrainedState wraps an already-fitted backend.
func TrainedState(backend Backend, schema Schema, grid *covariate.Grid) *State {
	return &State{Mode: ModeTrained, Schema: schema, Grid: grid, Backend: backend}
}

// BootstrapConfig configures Bootstrap.
type BootstrapConfig struct {
	// ModelEnabled switches the regression backend on. When false the engine
	// runs on the heuristic only.
	ModelEnabled bool

	// Source provides training observations. Nil means none.
	Source airquality.ObservationSource

	// CovariateDir is searched for a gridded dataset. Empty means none.
	CovariateDir  string
	MaxCovariates int

	Forest          forest.Config
	MinObservations int

	Logger zerolog.Logger
}

// Bootstrap loads observations and covariates and fits the backend. It never
// fails: every unavailable dependency downgrades to heuristic mode (or to no
// covariates) and is logged at warn level.
func Bootstrap(ctx context.Context, cfg BootstrapConfig) *State {
	logger := cfg.Logger.With().Str("component", "bootstrap").Logger()

	if !cfg.ModelEnabled {
		logger.Warn().Str("reason", ReasonModelDisabled).Msg("running heuristic-only")
		return HeuristicState(ReasonModelDisabled)
	}

	source := cfg.Source
	if source == nil {
		source = airquality.NoSource{}
	}

	observations, err := source.LoadObservations(ctx)
	if err != nil {
		reason := ReasonSourceUnavailable
		if errors.Is(err, airquality.ErrNoObservations) {
			reason = ReasonTooFewStations
		}
		logger.Warn().Err(err).Str("source", source.Name()).Str("reason", reason).Msg("running heuristic-only")
		return HeuristicState(reason)
	}

	minObs := cfg.MinObservations
	if minObs <= 0 {
		minObs = DefaultMinObservations
	}
	if len(observations) < minObs {
		logger.Warn().
			Str("source", source.Name()).
			Int("stations", len(observations)).
			Int("required", minObs).
			Str("reason", ReasonTooFewStations).
			Msg("running heuristic-only")
		return HeuristicState(ReasonTooFewStations)
	}

	grid, err := covariate.Load(ctx, covariate.LoadConfig{
		Dir:          cfg.CovariateDir,
		MaxVariables: cfg.MaxCovariates,
		Logger:       logger,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("no covariate grid, using geographic features only")
		grid = nil
	}

	state, err := fit(ctx, observations, grid, cfg.Forest)
	if err != nil {
		logger.Warn().Err(err).Str("reason", ReasonFitFailed).Msg("running heuristic-only")
		return HeuristicState(ReasonFitFailed)
	}

	logger.Info().
		Str("source", source.Name()).
		Int("stations", state.Stations).
		Int("features", len(state.Schema)).
		Float64("r2", state.R2).
		Msg("regression backend trained")
	return state
}

func fit(ctx context.Context, observations []airquality.Observation, grid *covariate.Grid, cfg forest.Config) (*State, error) {
	rows := make([]Features, len(observations))
	y := make([]float64, len(observations))
	for i, o := range observations {
		rows[i] = BuildFeatures(o.Lat, o.Lon, grid)
		y[i] = o.PM25
	}

	schema := schemaFor(rows, grid)
	x := make([][]float64, len(rows))
	for i, row := range rows {
		x[i] = schema.Vector(row)
	}

	model, err := forest.Fit(ctx, x, y, cfg)
	if err != nil {
		return nil, fmt.Errorf("fit forest: %w", err)
	}

	state := TrainedState(model, schema, grid)
	state.Stations = len(observations)
	state.R2 = model.Score(x, y)
	return state, nil
}
