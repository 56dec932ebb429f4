package models

import (
	"github.com/breatheroute/aqforecast/internal/airquality"
	"github.com/breatheroute/aqforecast/internal/forecast"
	"github.com/breatheroute/aqforecast/internal/gazetteer"
	"github.com/breatheroute/aqforecast/internal/worker"
)

// City is one entry of the city list.
type City struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// NewCities converts gazetteer entries, keeping their order.
func NewCities(cities []gazetteer.City) []City {
	out := make([]City, len(cities))
	for i, c := range cities {
		out[i] = City{Name: c.Name, Lat: c.Lat, Lon: c.Lon}
	}
	return out
}

// CoordinatesQuery is the query string of the coordinate endpoints.
type CoordinatesQuery struct {
	Lat  float64 `validate:"gte=-90,lte=90"`
	Lon  float64 `validate:"gte=-180,lte=180"`
	Days int     `validate:"gte=1,lte=14"`
}

// DaysQuery is the query string of the city forecast endpoint.
type DaysQuery struct {
	Days int `validate:"gte=1,lte=14"`
}

// Prediction is the current-concentration response. City is empty for
// coordinate lookups.
type Prediction struct {
	City         string  `json:"city,omitempty"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	PM25         float64 `json:"pm25"`
	AQICategory  string  `json:"aqi_category"`
	AQIColor     string  `json:"aqi_color"`
	HealthAdvice string  `json:"health_advice"`
}

// NewPrediction rounds pm25 to one decimal and classifies the unrounded value.
func NewPrediction(city string, lat, lon, pm25 float64) Prediction {
	band := airquality.Classify(pm25)
	return Prediction{
		City:         city,
		Lat:          lat,
		Lon:          lon,
		PM25:         Round(pm25, 1),
		AQICategory:  string(band.Category),
		AQIColor:     band.Color,
		HealthAdvice: band.Advice,
	}
}

// ForecastDay is one day of a forecast response.
type ForecastDay struct {
	Date        Date    `json:"date"`
	DayName     string  `json:"day_name"`
	PM25        float64 `json:"pm25"`
	AQICategory string  `json:"aqi_category"`
	AQIColor    string  `json:"aqi_color"`
	Trend       string  `json:"trend"`
	Confidence  float64 `json:"confidence"`
}

// Forecast is the multi-day response. City is empty for coordinate lookups.
type Forecast struct {
	City     string        `json:"city,omitempty"`
	Lat      float64       `json:"lat"`
	Lon      float64       `json:"lon"`
	Forecast []ForecastDay `json:"forecast"`
}

// NewForecast converts engine output, rounding pm25 to one decimal and
// confidence to two.
func NewForecast(city string, lat, lon float64, days []forecast.Day) Forecast {
	out := Forecast{City: city, Lat: lat, Lon: lon, Forecast: make([]ForecastDay, len(days))}
	for i, d := range days {
		out.Forecast[i] = ForecastDay{
			Date:        Date(d.Date),
			DayName:     d.Label,
			PM25:        Round(d.PM25, 1),
			AQICategory: string(d.Band.Category),
			AQIColor:    d.Band.Color,
			Trend:       string(d.Trend),
			Confidence:  Round(d.Confidence, 2),
		}
	}
	return out
}

// AQIBand is one row of the published AQI table. MaxPM25 is omitted for the
// open-ended top band.
type AQIBand struct {
	Category string   `json:"category"`
	MaxPM25  *float64 `json:"max_pm25,omitempty"`
	Color    string   `json:"color"`
	Advice   string   `json:"health_advice"`
}

// NewAQIBands converts the classifier table.
func NewAQIBands(bands []airquality.Band) []AQIBand {
	out := make([]AQIBand, len(bands))
	for i, b := range bands {
		out[i] = AQIBand{Category: string(b.Category), Color: b.Color, Advice: b.Advice}
		if i < len(bands)-1 {
			max := b.Max
			out[i].MaxPM25 = &max
		}
	}
	return out
}

// CityOutlook is one city's row in the overview.
type CityOutlook struct {
	City         string  `json:"city"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	PM25         float64 `json:"pm25"`
	AQICategory  string  `json:"aqi_category"`
	AQIColor     string  `json:"aqi_color"`
	PeakPM25     float64 `json:"peak_pm25"`
	PeakDate     Date    `json:"peak_date"`
	PeakCategory string  `json:"peak_aqi_category"`
	RisingDays   int     `json:"rising_days"`
	FallingDays  int     `json:"falling_days"`
	StableDays   int     `json:"stable_days"`
}

// Overview is the latest all-cities sweep.
type Overview struct {
	GeneratedAt Timestamp      `json:"generated_at"`
	Days        int            `json:"days"`
	Mode        string         `json:"mode"`
	Worst       string         `json:"worst_city,omitempty"`
	Categories  map[string]int `json:"categories"`
	Cities      []CityOutlook  `json:"cities"`
	Failed      []string       `json:"failed,omitempty"`
}

// NewOverview converts a sweep result.
func NewOverview(o *worker.Overview) Overview {
	out := Overview{
		GeneratedAt: Timestamp(o.GeneratedAt),
		Days:        o.Days,
		Mode:        string(o.Mode),
		Categories:  make(map[string]int, len(o.Categories)),
		Cities:      make([]CityOutlook, len(o.Cities)),
		Failed:      o.Failed,
	}
	if worst, ok := o.Worst(); ok {
		out.Worst = worst.City
	}
	for cat, n := range o.Categories {
		out.Categories[string(cat)] = n
	}
	for i, c := range o.Cities {
		out.Cities[i] = CityOutlook{
			City:         c.City,
			Lat:          c.Lat,
			Lon:          c.Lon,
			PM25:         Round(c.Today, 1),
			AQICategory:  string(c.TodayAQI.Category),
			AQIColor:     c.TodayAQI.Color,
			PeakPM25:     Round(c.Peak, 1),
			PeakDate:     Date(c.PeakDate),
			PeakCategory: string(c.PeakAQI.Category),
			RisingDays:   c.Rising,
			FallingDays:  c.Falling,
			StableDays:   c.Stable,
		}
	}
	return out
}
