// Package geo validates coordinates against the deployment region.
package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/twpayne/go-geom"
)

var (
	// ErrInvalidCoordinate is returned for NaN or infinite coordinates.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrOutsideRegion is returned for coordinates outside the region.
	ErrOutsideRegion = errors.New("coordinates outside supported region")
)

// Region is an axis-aligned lon/lat box with inclusive edges.
type Region struct {
	Name   string
	bounds *geom.Bounds
}

// NewRegion builds a region from its latitude and longitude limits.
func NewRegion(name string, minLat, maxLat, minLon, maxLon float64) Region {
	return Region{
		Name:   name,
		bounds: geom.NewBounds(geom.XY).Set(minLon, minLat, maxLon, maxLat),
	}
}

// India is the deployment box: 6.5°–37.5° N, 68°–97.5° E.
var India = NewRegion("India", 6.5, 37.5, 68, 97.5)

// Contains reports whether (lat, lon) lies inside the region, edges included.
func (r Region) Contains(lat, lon float64) bool {
	return r.bounds.OverlapsPoint(geom.XY, geom.Coord{lon, lat})
}

// Validate returns nil for a finite coordinate inside the region.
func (r Region) Validate(lat, lon float64) error {
	for _, v := range []float64{lat, lon} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: lat=%v lon=%v", ErrInvalidCoordinate, lat, lon)
		}
	}
	if !r.Contains(lat, lon) {
		return fmt.Errorf("%w: (%g, %g) is outside %s bounds", ErrOutsideRegion, lat, lon, r.Name)
	}
	return nil
}

// Limits returns the latitude and longitude ranges.
func (r Region) Limits() (minLat, maxLat, minLon, maxLon float64) {
	return r.bounds.Min(1), r.bounds.Max(1), r.bounds.Min(0), r.bounds.Max(0)
}
