package forecast

// Region is the geographic bucket used by the fallback estimate.
type Region string

// Regions in priority order.
const (
	RegionIndoGangetic Region = "indo_gangetic"
	RegionHotspot      Region = "hotspot"
	RegionCoastal      Region = "coastal"
	RegionSouth        Region = "south"
	RegionOther        Region = "other"
)

var regionBase = map[Region]float64{
	RegionIndoGangetic: 150,
	RegionHotspot:      170,
	RegionCoastal:      40,
	RegionSouth:        50,
	RegionOther:        85,
}

// ClassifyRegion returns the first matching bucket. The order matters: a
// point inside the Indo-Gangetic box near the hotspot is Indo-Gangetic.
func ClassifyRegion(lat, lon float64) Region {
	switch {
	case inIndoGangetic(lat, lon):
		return RegionIndoGangetic
	case distHotspot(lat, lon) < 3:
		return RegionHotspot
	case isCoastal(lat, lon):
		return RegionCoastal
	case lat < 20:
		return RegionSouth
	default:
		return RegionOther
	}
}

// Base is the unadjusted PM2.5 estimate for the region.
func (r Region) Base() float64 {
	return regionBase[r]
}

// HeuristicBase is the fallback estimate used when no backend is trained.
func HeuristicBase(lat, lon float64) float64 {
	return ClassifyRegion(lat, lon).Base()
}
