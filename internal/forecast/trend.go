package forecast

import (
	"math"
	"math/rand/v2"
	"time"
)

const (
	trendAmplitude = 0.15
	trendFrequency = 0.3
	trendNoiseStd  = 0.05
)

// TrendSeed derives the per-location forecast seed from scaled coordinates:
// trunc(|lat*100 + lon*100|).
func TrendSeed(lat, lon float64) int64 {
	return int64(math.Abs(lat*100 + lon*100))
}

// DaySeed is the seed used for the forecast day falling on date.
func DaySeed(seed int64, date time.Time) int64 {
	return seed + int64(date.Day())
}

// TrendFactor returns 1 + 0.15*sin(0.3*dayOffset) + N(0, 0.05²), with the
// noise drawn from a generator seeded only by seed.
func TrendFactor(dayOffset int, seed int64) float64 {
	rng := rand.New(rand.NewPCG(uint64(seed), 0))
	noise := rng.NormFloat64() * trendNoiseStd
	return 1 + trendAmplitude*math.Sin(trendFrequency*float64(dayOffset)) + noise
}
