// Package airquality provides ground-truth PM2.5 station observations and the
// AQI category bands used to label concentrations.
package airquality

import (
	"context"
	"errors"
	"math"
	"time"
)

// Source errors.
var (
	// ErrSourceUnavailable means the observation source cannot be reached or
	// does not exist. It is not fatal: callers fall back to heuristic mode.
	ErrSourceUnavailable = errors.New("station observation source unavailable")

	// ErrNoObservations means the source was reachable but produced no usable rows.
	ErrNoObservations = errors.New("no usable station observations")
)

// UnitMicrogramsPerCubicMeter is the unit of every PM2.5 value in this package.
const UnitMicrogramsPerCubicMeter = "µg/m³"

// Observation is a single PM2.5 reading at a monitoring station.
type Observation struct {
	StationID  string
	Name       string
	Lat        float64
	Lon        float64
	PM25       float64
	MeasuredAt time.Time
}

// Valid reports whether the observation carries finite coordinates and a
// finite, non-negative concentration.
func (o Observation) Valid() bool {
	for _, v := range []float64{o.Lat, o.Lon, o.PM25} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return o.PM25 >= 0
}

// ObservationSource loads the station observation table used to fit the
// regression backend.
type ObservationSource interface {
	// LoadObservations returns every usable observation. It returns an error
	// wrapping ErrSourceUnavailable when the backing store is absent.
	LoadObservations(ctx context.Context) ([]Observation, error)

	// Name identifies the source for logging.
	Name() string
}

// NoSource is an ObservationSource that is never available.
type NoSource struct{}

// LoadObservations always returns ErrSourceUnavailable.
func (NoSource) LoadObservations(context.Context) ([]Observation, error) {
	return nil, ErrSourceUnavailable
}

// Name implements ObservationSource.
func (NoSource) Name() string { return "none" }
