// Package forecast estimates PM2.5 for a coordinate and projects it over the
// coming days.
//
// An Engine is built once from the State produced by Bootstrap and is then
// read-only: every method is safe for concurrent use. Point estimates come
// from the trained backend when one exists and from a fixed geographic
// heuristic otherwise; both are scaled by a month/latitude seasonal factor
// and clamped to [MinPM25, MaxPM25]. Forecasts add a reproducible per-day
// trend factor seeded from the coordinates.
package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/breatheroute/aqforecast/internal/airquality"
)

// Output range for every estimate, in µg/m³.
const (
	MinPM25 = 10.0
	MaxPM25 = 350.0
)

const (
	confidenceStep  = 0.07
	confidenceFloor = 0.5
	risingRatio     = 1.05
	fallingRatio    = 0.95
)

// ErrInvalidDays is returned for a non-positive forecast horizon.
var ErrInvalidDays = errors.New("forecast: days must be positive")

// Trend labels a day relative to the previous one.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
	TrendStable  Trend = "stable"
)

// Day is one forecast entry. PM25 is unrounded.
type Day struct {
	Date       time.Time
	Label      string
	PM25       float64
	Band       airquality.Band
	Trend      Trend
	Confidence float64
}

// Options configures an Engine.
type Options struct {
	// Now is the clock used for "today". Default: time.Now.
	Now func() time.Time

	// Meter records prediction metrics. Default: the global meter provider.
	Meter metric.Meter
}

// Engine is the immutable prediction and forecast engine.
type Engine struct {
	state   State
	now     func() time.Time
	metrics *engineMetrics
}

// NewEngine builds an engine over state. A nil state means heuristic-only.
func NewEngine(state *State, opts Options) (*Engine, error) {
	if state == nil {
		state = HeuristicState("no state")
	}
	if state.Mode == ModeTrained && state.Backend == nil {
		return nil, fmt.Errorf("forecast: trained state without a backend")
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	m, err := newEngineMetrics(opts.Meter, state.Mode)
	if err != nil {
		return nil, fmt.Errorf("create engine metrics: %w", err)
	}

	return &Engine{state: *state, now: now, metrics: m}, nil
}

// Mode reports whether the engine uses a trained backend.
func (e *Engine) Mode() Mode { return e.state.Mode }

// Reason is the downgrade reason in heuristic mode, empty otherwise.
func (e *Engine) Reason() string { return e.state.Reason }

// Schema returns the feature names the engine predicts with.
func (e *Engine) Schema() Schema {
	out := make(Schema, len(e.state.Schema))
	copy(out, e.state.Schema)
	return out
}

// Predict estimates PM2.5 at (lat, lon) for today.
func (e *Engine) Predict(lat, lon float64) float64 {
	return e.PredictAt(lat, lon, e.now())
}

// PredictAt estimates PM2.5 at (lat, lon) for the month of date.
func (e *Engine) PredictAt(lat, lon float64, date time.Time) float64 {
	e.metrics.recordPrediction()
	return clamp(e.base(lat, lon) * SeasonalFactor(date.Month(), lat))
}

// Forecast projects days entries starting today.
func (e *Engine) Forecast(lat, lon float64, days int) ([]Day, error) {
	return e.ForecastFrom(lat, lon, days, e.now())
}

// ForecastFrom projects days entries starting at today. Identical inputs
// always yield identical output.
func (e *Engine) ForecastFrom(lat, lon float64, days int, today time.Time) ([]Day, error) {
	if days <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDays, days)
	}
	e.metrics.recordForecast(days)

	seed := TrendSeed(lat, lon)
	out := make([]Day, days)
	var prev float64

	for i := range days {
		date := today.AddDate(0, 0, i)
		pm := clamp(e.PredictAt(lat, lon, date) * TrendFactor(i, DaySeed(seed, date)))

		trend := TrendStable
		if i > 0 {
			trend = trendLabel(pm, prev)
		}

		out[i] = Day{
			Date:       date,
			Label:      dayLabel(i, date),
			PM25:       pm,
			Band:       airquality.Classify(pm),
			Trend:      trend,
			Confidence: confidence(i),
		}
		prev = pm
	}
	return out, nil
}

// Classify labels a concentration with its AQI band.
func (e *Engine) Classify(pm25 float64) airquality.Band {
	return airquality.Classify(pm25)
}

func (e *Engine) base(lat, lon float64) float64 {
	if e.state.Mode != ModeTrained {
		return HeuristicBase(lat, lon)
	}
	features := BuildFeatures(lat, lon, e.state.Grid)
	return e.state.Backend.Predict(e.state.Schema.Vector(features))
}

func clamp(pm float64) float64 {
	return math.Max(MinPM25, math.Min(MaxPM25, pm))
}

func trendLabel(pm, prev float64) Trend {
	switch {
	case pm > prev*risingRatio:
		return TrendRising
	case pm < prev*fallingRatio:
		return TrendFalling
	default:
		return TrendStable
	}
}

func confidence(i int) float64 {
	return math.Max(confidenceFloor, 1-confidenceStep*float64(i))
}

func dayLabel(i int, date time.Time) string {
	switch i {
	case 0:
		return "Today"
	case 1:
		return "Tomorrow"
	default:
		return date.Format("Mon")
	}
}
