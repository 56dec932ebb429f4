package forecast_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/breatheroute/aqforecast/internal/forecast"
)

func TestBuildFeatures_Delhi(t *testing.T) {
	f := forecast.BuildFeatures(28.6139, 77.209, nil)

	assert.Len(t, f, len(forecast.BaseSchema()))
	assert.InDelta(t, (28.6139-6.5)/31, f[forecast.FeatureLatNorm], 1e-12)
	assert.InDelta(t, (77.209-68)/29.5, f[forecast.FeatureLonNorm], 1e-12)
	assert.InDelta(t, 0, f[forecast.FeatureDistHotspot], 1e-12)
	assert.Equal(t, 1.0, f[forecast.FeatureIndoGangetic])
	assert.Equal(t, 0.0, f[forecast.FeatureCoastal])
}

func TestBuildFeatures_Indicators(t *testing.T) {
	tests := []struct {
		name         string
		lat, lon     float64
		indoGangetic float64
		coastal      float64
	}{
		{"mumbai", 19.076, 72.8777, 0, 1},
		{"chennai", 13.0827, 80.2707, 0, 1},
		{"ig lower edge excluded", 24, 80, 0, 0},
		{"ig upper lon edge excluded", 26, 88, 0, 0},
		{"patna", 25.5941, 85.1376, 1, 0},
		{"west coast north of 25", 26, 70, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := forecast.BuildFeatures(tt.lat, tt.lon, nil)
			assert.Equal(t, tt.indoGangetic, f[forecast.FeatureIndoGangetic])
			assert.Equal(t, tt.coastal, f[forecast.FeatureCoastal])
		})
	}
}

func TestSchema_VectorDefaultsMissingToZero(t *testing.T) {
	schema := append(forecast.BaseSchema(), "t2m", "tp")
	f := forecast.BuildFeatures(20, 80, nil)
	f["tp"] = 3.5

	v := schema.Vector(f)
	assert.Len(t, v, 9)
	assert.Equal(t, 20.0, v[0])
	assert.Equal(t, 80.0, v[1])
	assert.Equal(t, 0.0, v[7])
	assert.Equal(t, 3.5, v[8])
}

func TestClassifyRegion_Priority(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		region   forecast.Region
		base     float64
	}{
		{"delhi is indo-gangetic before hotspot", 28.6139, 77.209, forecast.RegionIndoGangetic, 150},
		{"near delhi outside the box", 31.5, 77.2, forecast.RegionHotspot, 170},
		{"mumbai", 19.076, 72.8777, forecast.RegionCoastal, 40},
		{"bengaluru", 12.9716, 77.5946, forecast.RegionCoastal, 40},
		{"hyderabad", 17.385, 78.4867, forecast.RegionSouth, 50},
		{"central india", 22, 80, forecast.RegionOther, 85},
		{"ig edge falls through", 24, 80, forecast.RegionOther, 85},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.region, forecast.ClassifyRegion(tt.lat, tt.lon))
			assert.Equal(t, tt.base, forecast.HeuristicBase(tt.lat, tt.lon))
		})
	}
}

func TestSeasonalFactor(t *testing.T) {
	tests := []struct {
		month  time.Month
		lat    float64
		factor float64
	}{
		{time.December, 28, 1.35},
		{time.November, 28, 1.35},
		{time.January, 24, 1.10},
		{time.January, 12, 1.10},
		{time.February, 30, 1.20},
		{time.October, 12, 1.05},
		{time.July, 28, 0.70},
		{time.September, 10, 0.70},
		{time.April, 10, 0.90},
		{time.May, 30, 0.90},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.factor, forecast.SeasonalFactor(tt.month, tt.lat), "%s lat=%v", tt.month, tt.lat)
	}
	assert.Equal(t, 1.0, forecast.SeasonalFactor(time.Month(13), 28))
}

func TestTrendSeed(t *testing.T) {
	assert.Equal(t, int64(10582), forecast.TrendSeed(28.6139, 77.209))
	assert.Equal(t, int64(500), forecast.TrendSeed(-10, 5))

	date := time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, int64(10612), forecast.DaySeed(10582, date))
}

func TestTrendFactor_Reproducible(t *testing.T) {
	for i := range 14 {
		a := forecast.TrendFactor(i, 10582+int64(i))
		b := forecast.TrendFactor(i, 10582+int64(i))
		assert.Equal(t, a, b)
		assert.False(t, math.IsNaN(a))
		assert.InDelta(t, 1+0.15*math.Sin(0.3*float64(i)), a, 0.3)
	}
	assert.NotEqual(t, forecast.TrendFactor(3, 1), forecast.TrendFactor(3, 2))
}
