// Package worker runs the scheduled forecast sweep over every known city.
package worker

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/breatheroute/aqforecast/internal/airquality"
	"github.com/breatheroute/aqforecast/internal/forecast"
	"github.com/breatheroute/aqforecast/internal/gazetteer"
)

// Forecaster is the subset of forecast.Engine the sweep needs.
type Forecaster interface {
	ForecastFrom(lat, lon float64, days int, today time.Time) ([]forecast.Day, error)
	Mode() forecast.Mode
}

// SweepConfig holds configuration for the sweep job.
type SweepConfig struct {
	// Days is the forecast horizon per city. Default: 7.
	Days int

	// Concurrency bounds simultaneous city forecasts. Default: 4.
	Concurrency int

	// Timeout bounds a whole run. Default: 2 minutes.
	Timeout time.Duration
}

// DefaultSweepConfig returns the default sweep configuration.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		Days:        7,
		Concurrency: 4,
		Timeout:     2 * time.Minute,
	}
}

// CityOutlook summarises one city's forecast.
type CityOutlook struct {
	City string
	Lat  float64
	Lon  float64

	Today    float64
	TodayAQI airquality.Band

	Peak     float64
	PeakDate time.Time
	PeakAQI  airquality.Band

	Rising  int
	Falling int
	Stable  int
}

// Overview is the result of one sweep.
type Overview struct {
	GeneratedAt time.Time
	Days        int
	Mode        forecast.Mode

	// Cities is sorted by name.
	Cities []CityOutlook
	Failed []string

	// Categories counts cities by today's AQI category.
	Categories map[airquality.Category]int
}

// Worst returns the city with the highest value today.
func (o *Overview) Worst() (CityOutlook, bool) {
	if o == nil || len(o.Cities) == 0 {
		return CityOutlook{}, false
	}
	worst := o.Cities[0]
	for _, c := range o.Cities[1:] {
		if c.Today > worst.Today {
			worst = c
		}
	}
	return worst, true
}

// SweepMetrics tracks sweep statistics across runs.
type SweepMetrics struct {
	TotalRuns       int64
	CitiesSucceeded int64
	CitiesFailed    int64
	LastRunAt       time.Time
	LastRunDuration time.Duration
}

// SweepJobConfig holds dependencies for creating a SweepJob.
type SweepJobConfig struct {
	Config SweepConfig
	Engine Forecaster
	Cities []gazetteer.City
	Logger zerolog.Logger

	// Now is the clock used for "today". Default: time.Now.
	Now func() time.Time
}

// SweepJob forecasts every configured city.
type SweepJob struct {
	config SweepConfig
	engine Forecaster
	cities []gazetteer.City
	logger zerolog.Logger
	now    func() time.Time

	mu      sync.RWMutex
	metrics SweepMetrics
}

// NewSweepJob creates a sweep job.
func NewSweepJob(cfg SweepJobConfig) *SweepJob {
	def := DefaultSweepConfig()
	c := cfg.Config
	if c.Days <= 0 {
		c.Days = def.Days
	}
	if c.Concurrency <= 0 {
		c.Concurrency = def.Concurrency
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &SweepJob{
		config: c,
		engine: cfg.Engine,
		cities: cfg.Cities,
		logger: cfg.Logger.With().Str("job", "sweep").Logger(),
		now:    now,
	}
}

// Run forecasts every city. A failure for one city is recorded in the
// overview and does not abort the run; cancellation does.
func (j *SweepJob) Run(ctx context.Context) (*Overview, error) {
	start := j.now()
	today := start

	ctx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	j.logger.Info().
		Int("cities", len(j.cities)).
		Int("days", j.config.Days).
		Int("concurrency", j.config.Concurrency).
		Msg("starting forecast sweep")

	outlooks := make([]*CityOutlook, len(j.cities))
	var failed atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(j.config.Concurrency)
	for i, city := range j.cities {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			days, err := j.engine.ForecastFrom(city.Lat, city.Lon, j.config.Days, today)
			if err != nil {
				failed.Add(1)
				j.logger.Warn().Err(err).Str("city", city.Name).Msg("city forecast failed")
				return nil
			}
			o := summarize(city, days)
			outlooks[i] = &o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("forecast sweep: %w", err)
	}

	overview := &Overview{
		GeneratedAt: start,
		Days:        j.config.Days,
		Mode:        j.engine.Mode(),
		Categories:  make(map[airquality.Category]int),
	}
	for i, o := range outlooks {
		if o == nil {
			overview.Failed = append(overview.Failed, j.cities[i].Name)
			continue
		}
		overview.Cities = append(overview.Cities, *o)
		overview.Categories[o.TodayAQI.Category]++
	}
	sort.Slice(overview.Cities, func(a, b int) bool { return overview.Cities[a].City < overview.Cities[b].City })

	duration := j.now().Sub(start)
	j.record(len(overview.Cities), int(failed.Load()), start, duration)

	j.logger.Info().
		Dur("duration", duration).
		Int("succeeded", len(overview.Cities)).
		Int("failed", len(overview.Failed)).
		Str("mode", string(overview.Mode)).
		Msg("forecast sweep completed")

	return overview, nil
}

func summarize(city gazetteer.City, days []forecast.Day) CityOutlook {
	o := CityOutlook{City: city.Name, Lat: city.Lat, Lon: city.Lon}
	for i, d := range days {
		if i == 0 {
			o.Today = d.PM25
			o.TodayAQI = d.Band
		}
		if i == 0 || d.PM25 > o.Peak {
			o.Peak = d.PM25
			o.PeakDate = d.Date
			o.PeakAQI = d.Band
		}
		switch d.Trend {
		case forecast.TrendRising:
			o.Rising++
		case forecast.TrendFalling:
			o.Falling++
		default:
			o.Stable++
		}
	}
	return o
}

func (j *SweepJob) record(succeeded, failed int, at time.Time, took time.Duration) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.metrics.TotalRuns++
	j.metrics.CitiesSucceeded += int64(succeeded)
	j.metrics.CitiesFailed += int64(failed)
	j.metrics.LastRunAt = at
	j.metrics.LastRunDuration = took
}

// Metrics returns a copy of the accumulated statistics.
func (j *SweepJob) Metrics() SweepMetrics {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.metrics
}
