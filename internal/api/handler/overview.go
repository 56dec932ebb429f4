package handler

import (
	"net/http"

	"github.com/breatheroute/aqforecast/internal/api/models"
	"github.com/breatheroute/aqforecast/internal/api/response"
	"github.com/breatheroute/aqforecast/internal/worker"
)

// OverviewSource yields the latest sweep, or nil before the first one.
type OverviewSource interface {
	Latest() *worker.Overview
}

// OverviewHandler serves the all-cities sweep.
type OverviewHandler struct {
	source OverviewSource
}

// NewOverviewHandler creates an OverviewHandler. A nil source means the
// sweep is disabled.
func NewOverviewHandler(source OverviewSource) *OverviewHandler {
	return &OverviewHandler{source: source}
}

// GetOverview handles GET /v1/overview.
func (h *OverviewHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	if h.source == nil {
		response.ServiceUnavailable(w, r, "forecast sweep is disabled")
		return
	}
	latest := h.source.Latest()
	if latest == nil {
		w.Header().Set("Retry-After", "30")
		response.ServiceUnavailable(w, r, "forecast sweep has not completed yet")
		return
	}
	response.JSON(w, r, http.StatusOK, models.NewOverview(latest))
}
