package handler

import (
	"net/http"

	"github.com/breatheroute/aqforecast/internal/airquality"
	"github.com/breatheroute/aqforecast/internal/api/models"
	"github.com/breatheroute/aqforecast/internal/api/response"
	"github.com/breatheroute/aqforecast/internal/gazetteer"
)

// MetadataHandler serves static reference data.
type MetadataHandler struct {
	cities []models.City
	bands  []models.AQIBand
}

// NewMetadataHandler precomputes the city list and AQI table.
func NewMetadataHandler(g *gazetteer.Gazetteer) *MetadataHandler {
	return &MetadataHandler{
		cities: models.NewCities(g.Unique()),
		bands:  models.NewAQIBands(airquality.Bands()),
	}
}

// ListCities handles GET /v1/cities.
func (h *MetadataHandler) ListCities(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, h.cities)
}

// ListAQIBands handles GET /v1/metadata/aqi-bands.
func (h *MetadataHandler) ListAQIBands(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, h.bands)
}
