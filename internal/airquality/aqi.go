package airquality

import "math"

// Category is a named AQI band.
type Category string

const (
	CategoryGood         Category = "Good"
	CategorySatisfactory Category = "Satisfactory"
	CategoryModerate     Category = "Moderate"
	CategoryPoor         Category = "Poor"
	CategoryVeryPoor     Category = "Very Poor"
	CategorySevere       Category = "Severe"
)

// Band is one row of the AQI table. Max is an inclusive upper bound in µg/m³.
type Band struct {
	Max      float64
	Category Category
	Color    string
	Advice   string
}

// bands is ordered by Max; the last band is unbounded above.
var bands = []Band{
	{
		Max:      30,
		Category: CategoryGood,
		Color:    "#10b981",
		Advice:   "Air quality is excellent. Perfect for outdoor activities!",
	},
	{
		Max:      60,
		Category: CategorySatisfactory,
		Color:    "#84cc16",
		Advice:   "Air quality is acceptable. Sensitive individuals should limit prolonged outdoor exertion.",
	},
	{
		Max:      90,
		Category: CategoryModerate,
		Color:    "#f59e0b",
		Advice:   "Sensitive groups may experience respiratory symptoms. Consider reducing outdoor activities.",
	},
	{
		Max:      120,
		Category: CategoryPoor,
		Color:    "#f97316",
		Advice:   "Everyone may begin to experience health effects. Limit outdoor activities.",
	},
	{
		Max:      250,
		Category: CategoryVeryPoor,
		Color:    "#ef4444",
		Advice:   "Health alert! Everyone should avoid prolonged outdoor exertion.",
	},
	{
		Max:      math.Inf(1),
		Category: CategorySevere,
		Color:    "#475569",
		Advice:   "Health emergency! Avoid all outdoor activities. Stay indoors with air purification.",
	},
}

// Classify returns the band containing the PM2.5 concentration.
// Upper bounds are inclusive: 30 is Good, 30.01 is Satisfactory.
func Classify(pm25 float64) Band {
	for _, b := range bands {
		if pm25 <= b.Max {
			return b
		}
	}
	// NaN compares false against every bound.
	return bands[len(bands)-1]
}

// Bands returns a copy of the AQI table in ascending order.
func Bands() []Band {
	out := make([]Band, len(bands))
	copy(out, bands)
	return out
}
