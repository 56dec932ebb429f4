package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breatheroute/aqforecast/internal/airquality"
	"github.com/breatheroute/aqforecast/internal/api/models"
	"github.com/breatheroute/aqforecast/internal/forecast"
	"github.com/breatheroute/aqforecast/internal/worker"
)

func TestRound(t *testing.T) {
	assert.Equal(t, 123.5, models.Round(123.45, 1))
	assert.Equal(t, 0.93, models.Round(0.93, 2))
	assert.Equal(t, 0.86, models.Round(0.8600000001, 2))
	assert.Equal(t, 10.0, models.Round(10, 1))
}

func TestNewPrediction_JSON(t *testing.T) {
	p := models.NewPrediction("Delhi", 28.6139, 77.209, 182.449)

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "Delhi", got["city"])
	assert.Equal(t, 182.4, got["pm25"])
	assert.Equal(t, "Very Poor", got["aqi_category"])
	assert.Equal(t, "Health alert! Everyone should avoid prolonged outdoor exertion.", got["health_advice"])
	assert.NotEmpty(t, got["aqi_color"])
}

func TestNewPrediction_CoordinatesOmitCity(t *testing.T) {
	raw, err := json.Marshal(models.NewPrediction("", 19, 72.9, 40))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"city"`)
	assert.Contains(t, string(raw), `"aqi_category":"Satisfactory"`)
}

func TestNewForecast_JSON(t *testing.T) {
	day := time.Date(2025, time.January, 6, 9, 0, 0, 0, time.UTC)
	days := []forecast.Day{
		{Date: day, Label: "Today", PM25: 95.04, Band: airquality.Classify(95.04), Trend: forecast.TrendStable, Confidence: 1},
		{Date: day.AddDate(0, 0, 1), Label: "Tomorrow", PM25: 101.26, Band: airquality.Classify(101.26), Trend: forecast.TrendRising, Confidence: 0.93},
	}

	raw, err := json.Marshal(models.NewForecast("Delhi", 28.6, 77.2, days))
	require.NoError(t, err)

	var got struct {
		City     string `json:"city"`
		Forecast []map[string]any
	}
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Len(t, got.Forecast, 2)
	assert.Equal(t, "2025-01-06", got.Forecast[0]["date"])
	assert.Equal(t, "Today", got.Forecast[0]["day_name"])
	assert.Equal(t, 95.0, got.Forecast[0]["pm25"])
	assert.Equal(t, "2025-01-07", got.Forecast[1]["date"])
	assert.Equal(t, 101.3, got.Forecast[1]["pm25"])
	assert.Equal(t, "rising", got.Forecast[1]["trend"])
	assert.Equal(t, 0.93, got.Forecast[1]["confidence"])
}

func TestNewForecast_RoundsConfidence(t *testing.T) {
	days := []forecast.Day{{
		Date:       time.Date(2025, time.January, 7, 0, 0, 0, 0, time.UTC),
		Label:      "Tomorrow",
		PM25:       99.96,
		Band:       airquality.Classify(99.96),
		Trend:      forecast.TrendRising,
		Confidence: 1 - 0.07,
	}}

	f := models.NewForecast("", 19.07, 72.88, days)
	require.Len(t, f.Forecast, 1)
	assert.Equal(t, 0.93, f.Forecast[0].Confidence)
	assert.Equal(t, 100.0, f.Forecast[0].PM25)
}

func TestDaysQuery_Validation(t *testing.T) {
	v := validator.New()
	tests := []struct {
		days    int
		wantErr bool
	}{
		{1, false},
		{7, false},
		{14, false},
		{0, true},
		{-3, true},
		{15, true},
	}
	for _, tt := range tests {
		err := v.Struct(models.DaysQuery{Days: tt.days})
		if tt.wantErr {
			assert.Error(t, err, "days=%d", tt.days)
		} else {
			assert.NoError(t, err, "days=%d", tt.days)
		}
	}
}

func TestDate_RoundTrip(t *testing.T) {
	var d models.Date
	require.NoError(t, json.Unmarshal([]byte(`"2025-03-01"`), &d))
	assert.Equal(t, "2025-03-01", d.String())
	assert.Error(t, json.Unmarshal([]byte(`20250301`), &d))
}

func TestNewAQIBands(t *testing.T) {
	bands := models.NewAQIBands(airquality.Bands())
	require.Len(t, bands, 6)
	assert.Equal(t, "Good", bands[0].Category)
	require.NotNil(t, bands[0].MaxPM25)
	assert.Equal(t, 30.0, *bands[0].MaxPM25)
	assert.Nil(t, bands[5].MaxPM25)
}

func TestNewOverview(t *testing.T) {
	at := time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)
	o := models.NewOverview(&worker.Overview{
		GeneratedAt: at,
		Days:        7,
		Mode:        forecast.ModeTrained,
		Cities: []worker.CityOutlook{
			{City: "Delhi", Today: 210.04, TodayAQI: airquality.Classify(210.04), Peak: 260, PeakDate: at.AddDate(0, 0, 2), PeakAQI: airquality.Classify(260), Rising: 3},
			{City: "Kochi", Today: 25, TodayAQI: airquality.Classify(25), Peak: 25, PeakDate: at},
		},
		Categories: map[airquality.Category]int{airquality.CategoryVeryPoor: 1, airquality.CategoryGood: 1},
	})

	assert.Equal(t, "trained", o.Mode)
	assert.Equal(t, "Delhi", o.Worst)
	assert.Equal(t, map[string]int{"Very Poor": 1, "Good": 1}, o.Categories)
	require.Len(t, o.Cities, 2)
	assert.Equal(t, 210.0, o.Cities[0].PM25)
	assert.Equal(t, "Severe", o.Cities[0].PeakCategory)
	assert.Equal(t, "2025-01-08", o.Cities[0].PeakDate.String())
}
