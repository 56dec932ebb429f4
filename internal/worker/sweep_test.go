package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breatheroute/aqforecast/internal/airquality"
	"github.com/breatheroute/aqforecast/internal/forecast"
	"github.com/breatheroute/aqforecast/internal/gazetteer"
	"github.com/breatheroute/aqforecast/internal/worker"
)

var sweepDay = time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)

// fakeForecaster returns a fixed series per latitude and fails for lat < 0.
type fakeForecaster struct {
	mu     sync.Mutex
	calls  int
	series map[float64][]float64
}

func (f *fakeForecaster) ForecastFrom(lat, _ float64, days int, today time.Time) ([]forecast.Day, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if lat < 0 {
		return nil, errors.New("boom")
	}
	values := f.series[lat]
	out := make([]forecast.Day, 0, days)
	for i := 0; i < days && i < len(values); i++ {
		trend := forecast.TrendStable
		if i > 0 && values[i] > values[i-1]*1.05 {
			trend = forecast.TrendRising
		} else if i > 0 && values[i] < values[i-1]*0.95 {
			trend = forecast.TrendFalling
		}
		out = append(out, forecast.Day{
			Date:  today.AddDate(0, 0, i),
			PM25:  values[i],
			Band:  airquality.Classify(values[i]),
			Trend: trend,
		})
	}
	return out, nil
}

func (f *fakeForecaster) Mode() forecast.Mode { return forecast.ModeHeuristic }

func newJob(engine worker.Forecaster, cities []gazetteer.City) *worker.SweepJob {
	return worker.NewSweepJob(worker.SweepJobConfig{
		Config: worker.SweepConfig{Days: 3, Concurrency: 2, Timeout: time.Second},
		Engine: engine,
		Cities: cities,
		Logger: zerolog.Nop(),
		Now:    func() time.Time { return sweepDay },
	})
}

func TestSweepJob_Run(t *testing.T) {
	engine := &fakeForecaster{series: map[float64][]float64{
		28: {200, 250, 180},
		19: {40, 40, 41},
	}}
	cities := []gazetteer.City{
		{Key: "mumbai", Name: "Mumbai", Lat: 19, Lon: 72},
		{Key: "delhi", Name: "Delhi", Lat: 28, Lon: 77},
		{Key: "nowhere", Name: "Nowhere", Lat: -1, Lon: 0},
	}

	job := newJob(engine, cities)
	overview, err := job.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, engine.calls)
	assert.Equal(t, sweepDay, overview.GeneratedAt)
	assert.Equal(t, 3, overview.Days)
	assert.Equal(t, forecast.ModeHeuristic, overview.Mode)
	assert.Equal(t, []string{"Nowhere"}, overview.Failed)

	require.Len(t, overview.Cities, 2)
	delhi := overview.Cities[0]
	assert.Equal(t, "Delhi", delhi.City)
	assert.Equal(t, 200.0, delhi.Today)
	assert.Equal(t, airquality.CategoryVeryPoor, delhi.TodayAQI.Category)
	assert.Equal(t, 250.0, delhi.Peak)
	assert.Equal(t, sweepDay.AddDate(0, 0, 1), delhi.PeakDate)
	assert.Equal(t, 1, delhi.Rising)
	assert.Equal(t, 1, delhi.Falling)
	assert.Equal(t, 1, delhi.Stable)

	mumbai := overview.Cities[1]
	assert.Equal(t, "Mumbai", mumbai.City)
	assert.Equal(t, 3, mumbai.Stable)

	assert.Equal(t, map[airquality.Category]int{
		airquality.CategoryVeryPoor:     1,
		airquality.CategorySatisfactory: 1,
	}, overview.Categories)

	worst, ok := overview.Worst()
	require.True(t, ok)
	assert.Equal(t, "Delhi", worst.City)

	m := job.Metrics()
	assert.Equal(t, int64(1), m.TotalRuns)
	assert.Equal(t, int64(2), m.CitiesSucceeded)
	assert.Equal(t, int64(1), m.CitiesFailed)
	assert.Equal(t, sweepDay, m.LastRunAt)
}

func TestSweepJob_RunCancelled(t *testing.T) {
	engine := &fakeForecaster{series: map[float64][]float64{}}
	job := newJob(engine, []gazetteer.City{{Name: "Delhi", Lat: 28, Lon: 77}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := job.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(0), job.Metrics().TotalRuns)
}

func TestSweepJob_Defaults(t *testing.T) {
	engine := &fakeForecaster{series: map[float64][]float64{28: {100, 100, 100, 100, 100, 100, 100}}}
	job := worker.NewSweepJob(worker.SweepJobConfig{
		Engine: engine,
		Cities: []gazetteer.City{{Name: "Delhi", Lat: 28, Lon: 77}},
		Logger: zerolog.Nop(),
	})

	overview, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, worker.DefaultSweepConfig().Days, overview.Days)
}

func TestSweepJob_RealEngine(t *testing.T) {
	engine, err := forecast.NewEngine(forecast.HeuristicState(forecast.ReasonModelDisabled), forecast.Options{
		Now: func() time.Time { return sweepDay },
	})
	require.NoError(t, err)

	cities := gazetteer.Default().Unique()
	job := newJob(engine, cities)

	overview, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, overview.Cities, len(cities))
	assert.Empty(t, overview.Failed)
	for _, c := range overview.Cities {
		assert.GreaterOrEqual(t, c.Peak, c.Today)
		assert.GreaterOrEqual(t, c.Today, forecast.MinPM25)
		assert.LessOrEqual(t, c.Peak, forecast.MaxPM25)
	}
}

func TestOverview_WorstEmpty(t *testing.T) {
	var o *worker.Overview
	_, ok := o.Worst()
	assert.False(t, ok)
}
