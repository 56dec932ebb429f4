package forecast

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/breatheroute/aqforecast/internal/forecast"

type engineMetrics struct {
	predictions  metric.Int64Counter
	forecastDays metric.Int64Histogram
	mode         metric.MeasurementOption
}

func newEngineMetrics(meter metric.Meter, mode Mode) (*engineMetrics, error) {
	if meter == nil {
		meter = otel.Meter(meterName)
	}

	predictions, err := meter.Int64Counter(
		"aqforecast.predictions",
		metric.WithDescription("Number of point estimates computed"),
		metric.WithUnit("{prediction}"),
	)
	if err != nil {
		return nil, err
	}

	forecastDays, err := meter.Int64Histogram(
		"aqforecast.forecast.days",
		metric.WithDescription("Requested forecast horizon"),
		metric.WithUnit("d"),
	)
	if err != nil {
		return nil, err
	}

	return &engineMetrics{
		predictions:  predictions,
		forecastDays: forecastDays,
		mode:         metric.WithAttributes(attribute.String("mode", string(mode))),
	}, nil
}

// The engine is synchronous and has no request context; metrics are
// recorded against the background context.

func (m *engineMetrics) recordPrediction() {
	if m == nil {
		return
	}
	m.predictions.Add(context.Background(), 1, m.mode)
}

func (m *engineMetrics) recordForecast(days int) {
	if m == nil {
		return
	}
	m.forecastDays.Record(context.Background(), int64(days), m.mode)
}
