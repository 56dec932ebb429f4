package forecast

import "time"

// northernLat splits the seasonal table into north and south.
const northernLat = 24.0

// SeasonalFactor returns the multiplicative adjustment for month at lat.
func SeasonalFactor(month time.Month, lat float64) float64 {
	north := lat > northernLat
	switch month {
	case time.November, time.December, time.January:
		if north {
			return 1.35
		}
		return 1.10
	case time.October, time.February:
		if north {
			return 1.20
		}
		return 1.05
	case time.June, time.July, time.August, time.September:
		return 0.70
	case time.March, time.April, time.May:
		return 0.90
	}
	return 1.0
}
