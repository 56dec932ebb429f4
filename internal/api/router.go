// Package api wires the HTTP surface of the forecast service.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/breatheroute/aqforecast/internal/api/handler"
	"github.com/breatheroute/aqforecast/internal/api/middleware"
	"github.com/breatheroute/aqforecast/internal/api/models"
	"github.com/breatheroute/aqforecast/internal/gazetteer"
	"github.com/breatheroute/aqforecast/internal/geo"
	"github.com/breatheroute/aqforecast/internal/provider/resilience"
)

// Engine is what the router needs from forecast.Engine.
type Engine interface {
	handler.Forecaster
	handler.EngineInfo
}

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version   string
	BuildTime string
	Logger    zerolog.Logger
	Metrics   *middleware.Metrics

	Engine   Engine
	Cities   *gazetteer.Gazetteer
	Overview handler.OverviewSource
	Feeds    *resilience.Registry

	// Region defaults to geo.India.
	Region *geo.Region

	// CORSOrigins defaults to all origins.
	CORSOrigins []string

	// RateLimit is requests per minute per client IP on the prediction
	// routes. Zero disables limiting.
	RateLimit int

	RequireTLS bool
}

// NewRouter creates a chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	region := geo.India
	if cfg.Region != nil {
		region = *cfg.Region
	}
	cities := cfg.Cities
	if cities == nil {
		cities = gazetteer.Default()
	}

	// Order matters: ids first so every later layer can log and trace them.
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.HeaderRequestID},
		ExposedHeaders:   []string{middleware.HeaderRequestID, "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		models.NewNotFound(middleware.GetRequestID(r.Context()), "no such route").WithInstance(r.URL.Path).Write(w)
	})

	opsHandler := handler.NewOpsHandler(handler.OpsConfig{
		Version:   cfg.Version,
		BuildTime: cfg.BuildTime,
		Engine:    cfg.Engine,
		Feeds:     cfg.Feeds,
		Overview:  cfg.Overview,
	})
	forecastHandler := handler.NewForecastHandler(cfg.Engine, cities, region)
	metadataHandler := handler.NewMetadataHandler(cities)
	overviewHandler := handler.NewOverviewHandler(cfg.Overview)

	limit := func(next http.Handler) http.Handler { return next }
	if cfg.RateLimit > 0 {
		limit = middleware.RateLimitByIP(middleware.PerMinute(cfg.RateLimit))
	}

	r.Get("/", opsHandler.Root)

	forecastRoutes := func(r chi.Router) {
		r.Get("/cities", metadataHandler.ListCities)
		r.Group(func(r chi.Router) {
			r.Use(limit)
			r.Get("/predict/{city}", forecastHandler.PredictCity)
			r.Get("/predict-coords", forecastHandler.PredictCoords)
			r.Get("/forecast/{city}", forecastHandler.ForecastCity)
			r.Get("/forecast-coords", forecastHandler.ForecastCoords)
		})
	}

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		r.Get("/metadata/aqi-bands", metadataHandler.ListAQIBands)
		r.Get("/overview", overviewHandler.GetOverview)

		forecastRoutes(r)
	})

	// Unversioned paths kept for existing web clients.
	r.Route("/api", forecastRoutes)

	return r
}
