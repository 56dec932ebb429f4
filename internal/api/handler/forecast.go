package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/breatheroute/aqforecast/internal/api/models"
	"github.com/breatheroute/aqforecast/internal/api/response"
	"github.com/breatheroute/aqforecast/internal/forecast"
	"github.com/breatheroute/aqforecast/internal/gazetteer"
	"github.com/breatheroute/aqforecast/internal/geo"
)

// Forecaster is the part of forecast.Engine the HTTP layer uses.
type Forecaster interface {
	Predict(lat, lon float64) float64
	Forecast(lat, lon float64, days int) ([]forecast.Day, error)
}

// ForecastHandler serves point predictions and multi-day forecasts.
type ForecastHandler struct {
	engine Forecaster
	cities *gazetteer.Gazetteer
	region geo.Region
}

// NewForecastHandler creates a ForecastHandler.
func NewForecastHandler(engine Forecaster, cities *gazetteer.Gazetteer, region geo.Region) *ForecastHandler {
	return &ForecastHandler{engine: engine, cities: cities, region: region}
}

// PredictCity handles GET /v1/predict/{city}.
func (h *ForecastHandler) PredictCity(w http.ResponseWriter, r *http.Request) {
	city, ok := h.resolve(w, r)
	if !ok {
		return
	}
	pm25 := h.engine.Predict(city.Lat, city.Lon)
	response.JSON(w, r, http.StatusOK, models.NewPrediction(city.Name, city.Lat, city.Lon, pm25))
}

// PredictCoords handles GET /v1/predict-coords?lat=&lon=.
func (h *ForecastHandler) PredictCoords(w http.ResponseWriter, r *http.Request) {
	q, ok := h.coordinates(w, r, false)
	if !ok {
		return
	}
	pm25 := h.engine.Predict(q.Lat, q.Lon)
	response.JSON(w, r, http.StatusOK, models.NewPrediction("", q.Lat, q.Lon, pm25))
}

// ForecastCity handles GET /v1/forecast/{city}?days=.
func (h *ForecastHandler) ForecastCity(w http.ResponseWriter, r *http.Request) {
	city, ok := h.resolve(w, r)
	if !ok {
		return
	}

	days, ferr := queryDays(r)
	if ferr != nil {
		response.BadRequest(w, r, "invalid query parameters", []models.FieldError{*ferr})
		return
	}
	if err := validate.Struct(models.DaysQuery{Days: days}); err != nil {
		response.BadRequest(w, r, "invalid query parameters", fieldErrors(err))
		return
	}

	h.writeForecast(w, r, city.Name, city.Lat, city.Lon, days)
}

// ForecastCoords handles GET /v1/forecast-coords?lat=&lon=&days=.
func (h *ForecastHandler) ForecastCoords(w http.ResponseWriter, r *http.Request) {
	q, ok := h.coordinates(w, r, true)
	if !ok {
		return
	}
	h.writeForecast(w, r, "", q.Lat, q.Lon, q.Days)
}

func (h *ForecastHandler) writeForecast(w http.ResponseWriter, r *http.Request, name string, lat, lon float64, days int) {
	out, err := h.engine.Forecast(lat, lon, days)
	if err != nil {
		response.InternalError(w, r, "forecast failed")
		return
	}
	response.JSON(w, r, http.StatusOK, models.NewForecast(name, lat, lon, out))
}

func (h *ForecastHandler) resolve(w http.ResponseWriter, r *http.Request) (gazetteer.City, bool) {
	name := chi.URLParam(r, "city")
	city, err := h.cities.Resolve(name)
	if errors.Is(err, gazetteer.ErrCityNotFound) {
		response.NotFound(w, r, fmt.Sprintf("City '%s' not found", name))
		return gazetteer.City{}, false
	}
	if err != nil {
		response.InternalError(w, r, "city lookup failed")
		return gazetteer.City{}, false
	}
	return city, true
}

// coordinates parses and validates lat, lon and, when withDays is set, days.
// It writes the problem response itself on failure.
func (h *ForecastHandler) coordinates(w http.ResponseWriter, r *http.Request, withDays bool) (models.CoordinatesQuery, bool) {
	q := models.CoordinatesQuery{Days: DefaultDays}

	var errs []models.FieldError
	var ferr *models.FieldError
	if q.Lat, ferr = queryFloat(r, "lat"); ferr != nil {
		errs = append(errs, *ferr)
	}
	if q.Lon, ferr = queryFloat(r, "lon"); ferr != nil {
		errs = append(errs, *ferr)
	}
	if withDays {
		if q.Days, ferr = queryDays(r); ferr != nil {
			errs = append(errs, *ferr)
		}
	}
	if len(errs) > 0 {
		response.BadRequest(w, r, "invalid query parameters", errs)
		return q, false
	}

	if err := h.region.Validate(q.Lat, q.Lon); err != nil {
		if errors.Is(err, geo.ErrOutsideRegion) {
			response.OutsideRegion(w, r, fmt.Sprintf("Coordinates outside %s bounds", h.region.Name))
		} else {
			response.BadRequest(w, r, "coordinates must be finite numbers", nil)
		}
		return q, false
	}

	if err := validate.Struct(q); err != nil {
		response.BadRequest(w, r, "invalid query parameters", fieldErrors(err))
		return q, false
	}
	return q, true
}
