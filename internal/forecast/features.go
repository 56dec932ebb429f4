package forecast

import (
	"math"

	"github.com/breatheroute/aqforecast/internal/covariate"
)

// Base feature names, in schema order.
const (
	FeatureLat          = "lat"
	FeatureLon          = "lon"
	FeatureLatNorm      = "lat_norm"
	FeatureLonNorm      = "lon_norm"
	FeatureDistHotspot  = "dist_delhi"
	FeatureIndoGangetic = "indo_gangetic"
	FeatureCoastal      = "coastal"
)

// Region constants. Normalisation spans the deployment box; the hotspot is
// central Delhi.
const (
	latMin     = 6.5
	latSpan    = 31.0
	lonMin     = 68.0
	lonSpan    = 29.5
	hotspotLat = 28.6139
	hotspotLon = 77.209
)

// Schema is the ordered list of feature names a backend was trained on.
type Schema []string

// BaseSchema returns the geographic features with no covariates.
func BaseSchema() Schema {
	return Schema{
		FeatureLat,
		FeatureLon,
		FeatureLatNorm,
		FeatureLonNorm,
		FeatureDistHotspot,
		FeatureIndoGangetic,
		FeatureCoastal,
	}
}

// Features is a named feature set for one coordinate.
type Features map[string]float64

// Vector lays f out in schema order. Names absent from f are zero.
func (s Schema) Vector(f Features) []float64 {
	v := make([]float64, len(s))
	for i, name := range s {
		v[i] = f[name]
	}
	return v
}

// BuildFeatures computes the geographic features for (lat, lon) plus every
// covariate the grid holds at that point. A nil grid contributes nothing.
func BuildFeatures(lat, lon float64, grid *covariate.Grid) Features {
	f := Features{
		FeatureLat:          lat,
		FeatureLon:          lon,
		FeatureLatNorm:      (lat - latMin) / latSpan,
		FeatureLonNorm:      (lon - lonMin) / lonSpan,
		FeatureDistHotspot:  distHotspot(lat, lon),
		FeatureIndoGangetic: indicator(inIndoGangetic(lat, lon)),
		FeatureCoastal:      indicator(isCoastal(lat, lon)),
	}
	for _, v := range grid.Sample(lat, lon) {
		f[v.Name] = v.Value
	}
	return f
}

// schemaFor returns the base schema followed by every covariate name that
// appears in rows, in first-appearance order.
func schemaFor(rows []Features, grid *covariate.Grid) Schema {
	schema := BaseSchema()
	seen := make(map[string]bool, len(schema))
	for _, name := range schema {
		seen[name] = true
	}
	names := grid.Names()
	for _, row := range rows {
		for _, name := range names {
			if _, ok := row[name]; ok && !seen[name] {
				seen[name] = true
				schema = append(schema, name)
			}
		}
	}
	return schema
}

func distHotspot(lat, lon float64) float64 {
	return math.Hypot(lat-hotspotLat, lon-hotspotLon)
}

// inIndoGangetic is a bounding-box approximation with exclusive edges.
func inIndoGangetic(lat, lon float64) bool {
	return lat > 24 && lat < 31 && lon > 74 && lon < 88
}

func isCoastal(lat, lon float64) bool {
	return lat < 15 || (lon < 74 && lat < 25)
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
