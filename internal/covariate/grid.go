// Package covariate loads an optional gridded climate dataset and answers
// nearest-neighbour lookups against its time-averaged variables.
//
// A missing dataset is a normal state: a nil *Grid answers every lookup with
// an empty result.
package covariate

import (
	"math"
	"sort"
)

// DefaultMaxVariables caps how many variables are kept from a dataset.
const DefaultMaxVariables = 10

// Value is one sampled variable.
type Value struct {
	Name  string
	Value float64
}

// Grid is an immutable, time-averaged dataset on a rectilinear lat/lon grid.
// Axes may be ascending or descending. Safe for concurrent use.
type Grid struct {
	lat    []float64
	lon    []float64
	names  []string
	fields map[string][]float64 // row-major [lat, lon]
}

// Names returns the variable names in dataset order.
func (g *Grid) Names() []string {
	if g == nil {
		return nil
	}
	out := make([]string, len(g.names))
	copy(out, g.names)
	return out
}

// Shape returns the number of latitude and longitude points.
func (g *Grid) Shape() (nlat, nlon int) {
	if g == nil {
		return 0, 0
	}
	return len(g.lat), len(g.lon)
}

// Sample returns the nearest-cell value of every variable at (lat, lon),
// in dataset order. Variables whose nearest cell holds no data are omitted.
// Coordinates outside the grid resolve to the nearest edge cell.
func (g *Grid) Sample(lat, lon float64) []Value {
	if g == nil {
		return nil
	}
	cell := g.cell(lat, lon)
	out := make([]Value, 0, len(g.names))
	for _, name := range g.names {
		v := g.fields[name][cell]
		if math.IsNaN(v) {
			continue
		}
		out = append(out, Value{Name: name, Value: v})
	}
	return out
}

// Lookup returns one variable at (lat, lon). ok is false when the variable
// does not exist or its nearest cell holds no data.
func (g *Grid) Lookup(name string, lat, lon float64) (value float64, ok bool) {
	if g == nil {
		return 0, false
	}
	field, exists := g.fields[name]
	if !exists {
		return 0, false
	}
	v := field[g.cell(lat, lon)]
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func (g *Grid) cell(lat, lon float64) int {
	return nearest(g.lat, lat)*len(g.lon) + nearest(g.lon, lon)
}

// nearest returns the index of the axis point closest to v. Ties resolve to
// the lower index; NaN resolves to the last index.
func nearest(axis []float64, v float64) int {
	n := len(axis)
	if n == 1 {
		return 0
	}
	ascending := axis[n-1] >= axis[0]
	i := sort.Search(n, func(i int) bool {
		if ascending {
			return axis[i] >= v
		}
		return axis[i] <= v
	})
	switch {
	case i == 0:
		return 0
	case i == n:
		return n - 1
	case math.Abs(axis[i]-v) < math.Abs(axis[i-1]-v):
		return i
	default:
		return i - 1
	}
}

func monotonic(axis []float64) bool {
	if len(axis) < 2 {
		return true
	}
	ascending := axis[1] > axis[0]
	for i := 1; i < len(axis); i++ {
		if ascending && axis[i] <= axis[i-1] {
			return false
		}
		if !ascending && axis[i] >= axis[i-1] {
			return false
		}
	}
	return true
}
