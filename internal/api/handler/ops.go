// Package handler provides the HTTP handlers of the forecast API.
package handler

import (
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/breatheroute/aqforecast/internal/api/models"
	"github.com/breatheroute/aqforecast/internal/api/response"
	"github.com/breatheroute/aqforecast/internal/forecast"
	"github.com/breatheroute/aqforecast/internal/provider/resilience"
)

// APIVersion is reported by the root banner.
const APIVersion = "2.0"

// EngineInfo describes the serving engine.
type EngineInfo interface {
	Mode() forecast.Mode
	Reason() string
	Schema() forecast.Schema
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	engine    EngineInfo
	feeds     *resilience.Registry
	overview  OverviewSource
	now       func() time.Time
}

// OpsConfig holds dependencies for the OpsHandler.
type OpsConfig struct {
	Version   string
	BuildTime string
	Engine    EngineInfo

	// Feeds defaults to resilience.GlobalRegistry.
	Feeds *resilience.Registry

	// Overview is nil when the sweep is disabled.
	Overview OverviewSource
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	feeds := cfg.Feeds
	if feeds == nil {
		feeds = resilience.GlobalRegistry
	}
	return &OpsHandler{
		version:   cfg.Version,
		buildTime: cfg.BuildTime,
		engine:    cfg.Engine,
		feeds:     feeds,
		overview:  cfg.Overview,
		now:       time.Now,
	}
}

// Root handles GET / with the service banner.
func (h *OpsHandler) Root(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Banner{Message: "Air Pollution Forecast API", Version: APIVersion})
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(h.now()),
		Details: map[string]any{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	})
}

// ReadinessCheck handles GET /v1/ops/ready. The engine is built before the
// server starts, so readiness only reports which mode is serving.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatusOK
	if h.engine.Mode() != forecast.ModeTrained {
		status = models.HealthStatusDegraded
	}
	response.JSON(w, r, http.StatusOK, models.Health{
		Status:  status,
		Time:    models.Timestamp(h.now()),
		Details: map[string]any{"mode": string(h.engine.Mode())},
	})
}

// SystemStatus handles GET /v1/ops/status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(h.now()),
		Engine: models.EngineStatus{
			Mode:     string(h.engine.Mode()),
			Reason:   h.engine.Reason(),
			Features: h.engine.Schema(),
		},
		Subsystems: []models.SubsystemStatus{h.engineSubsystem(), h.sweepSubsystem()},
		Providers:  h.providers(),
	}

	for _, s := range status.Subsystems {
		status.Status = worst(status.Status, s.Status)
	}
	for _, p := range status.Providers {
		status.Status = worst(status.Status, p.Status)
	}

	response.JSON(w, r, http.StatusOK, status)
}

func (h *OpsHandler) engineSubsystem() models.SubsystemStatus {
	s := models.SubsystemStatus{Name: "forecast-engine", Status: models.HealthStatusOK}
	if h.engine.Mode() != forecast.ModeTrained {
		s.Status = models.HealthStatusDegraded
		s.Detail = "serving heuristic estimates: " + h.engine.Reason()
	}
	return s
}

func (h *OpsHandler) sweepSubsystem() models.SubsystemStatus {
	s := models.SubsystemStatus{Name: "forecast-sweep", Status: models.HealthStatusOK}
	switch {
	case h.overview == nil:
		s.Detail = "disabled"
	case h.overview.Latest() == nil:
		s.Status = models.HealthStatusDegraded
		s.Detail = "no completed sweep yet"
	default:
		s.Detail = "last run " + h.overview.Latest().GeneratedAt.Format(time.RFC3339)
	}
	return s
}

func (h *OpsHandler) providers() []models.ProviderStatus {
	feeds := h.feeds.All()
	out := make([]models.ProviderStatus, 0, len(feeds))
	for _, f := range feeds {
		p := models.ProviderStatus{
			Provider:     f.Name,
			Status:       models.HealthStatusOK,
			CircuitState: f.CircuitState.String(),
			Message:      f.LastError,
		}
		switch f.CircuitState {
		case gobreaker.StateOpen:
			p.Status = models.HealthStatusFail
		case gobreaker.StateHalfOpen:
			p.Status = models.HealthStatusDegraded
		}
		if f.LastSuccessAt != nil {
			ts := models.Timestamp(*f.LastSuccessAt)
			p.LastSuccessAt = &ts
		}
		if f.LastFailureAt != nil {
			ts := models.Timestamp(*f.LastFailureAt)
			p.LastFailureAt = &ts
		}
		out = append(out, p)
	}
	return out
}

// worst orders OK < DEGRADED < FAIL. A failing station feed only degrades
// the service since the heuristic still answers.
func worst(a, b models.HealthStatus) models.HealthStatus {
	if b == models.HealthStatusFail {
		b = models.HealthStatusDegraded
	}
	if a == models.HealthStatusOK {
		return b
	}
	return a
}
