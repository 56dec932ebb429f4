// Package gazetteer resolves city names to coordinates.
package gazetteer

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed cities.yaml
var citiesYAML []byte

// ErrCityNotFound is returned when a name matches no entry.
var ErrCityNotFound = errors.New("city not found")

// City is one gazetteer entry. Key is the lowercase lookup name.
type City struct {
	Key  string  `yaml:"key"`
	Name string  `yaml:"name"`
	Lat  float64 `yaml:"lat"`
	Lon  float64 `yaml:"lon"`
}

// Gazetteer is an ordered, immutable city table.
type Gazetteer struct {
	cities []City
	byKey  map[string]int
	unique []City
}

// Parse decodes a YAML list of cities.
func Parse(data []byte) (*Gazetteer, error) {
	var cities []City
	if err := yaml.Unmarshal(data, &cities); err != nil {
		return nil, fmt.Errorf("decode gazetteer: %w", err)
	}
	return New(cities)
}

// New builds a gazetteer. Keys are normalised to lowercase and must be unique.
func New(cities []City) (*Gazetteer, error) {
	g := &Gazetteer{
		cities: make([]City, len(cities)),
		byKey:  make(map[string]int, len(cities)),
	}
	for i, c := range cities {
		c.Key = normalize(c.Key)
		if c.Key == "" || c.Name == "" {
			return nil, fmt.Errorf("gazetteer entry %d: key and name are required", i)
		}
		if _, dup := g.byKey[c.Key]; dup {
			return nil, fmt.Errorf("gazetteer entry %d: duplicate key %q", i, c.Key)
		}
		g.cities[i] = c
		g.byKey[c.Key] = i
	}
	g.unique = dedupe(g.cities)
	return g, nil
}

var defaultGazetteer = sync.OnceValue(func() *Gazetteer {
	g, err := Parse(citiesYAML)
	if err != nil {
		panic(err)
	}
	return g
})

// Default returns the embedded city table.
func Default() *Gazetteer {
	return defaultGazetteer()
}

// Resolve finds a city by name. An exact (case-insensitive, trimmed) key match
// wins; otherwise the first entry in table order whose key contains the name,
// or is contained in it, is returned.
func (g *Gazetteer) Resolve(name string) (City, error) {
	q := normalize(name)
	if q == "" {
		return City{}, fmt.Errorf("%w: empty name", ErrCityNotFound)
	}
	if i, ok := g.byKey[q]; ok {
		return g.cities[i], nil
	}
	for _, c := range g.cities {
		if strings.Contains(c.Key, q) || strings.Contains(q, c.Key) {
			return c, nil
		}
	}
	return City{}, fmt.Errorf("%w: %q", ErrCityNotFound, name)
}

// All returns every entry in table order, aliases included.
func (g *Gazetteer) All() []City {
	out := make([]City, len(g.cities))
	copy(out, g.cities)
	return out
}

// Unique returns one entry per distinct coordinate (first in table order
// wins), sorted by display name.
func (g *Gazetteer) Unique() []City {
	out := make([]City, len(g.unique))
	copy(out, g.unique)
	return out
}

func dedupe(cities []City) []City {
	type coord struct{ lat, lon float64 }
	seen := make(map[coord]bool, len(cities))
	var out []City
	for _, c := range cities {
		k := coord{c.Lat, c.Lon}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
