// Package config loads the service configuration once at startup.
//
// Values are resolved from the process environment, then from a .env file
// (which never overrides variables already set), then from struct-tag
// defaults. The result is validated before use and is immutable thereafter.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/breatheroute/aqforecast/internal/database"
)

// ErrInvalid wraps every configuration failure.
var ErrInvalid = errors.New("invalid configuration")

// Station source kinds.
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
	SourceHTTP     = "http"
	SourceNone     = "none"
)

// Config is the top-level configuration.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"development" validate:"oneof=development test staging production"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn error"`

	Server    ServerConfig
	Model     ModelConfig
	Database  database.Config
	Telemetry TelemetryConfig
	Sweep     SweepConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `envconfig:"APP_PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `envconfig:"HTTP_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"30s"`
	CORSOrigins     []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	RateLimit       int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120" validate:"min=1"`
	RequireTLS      bool          `envconfig:"REQUIRE_TLS" default:"false"`
}

// ModelConfig controls the regression backend and its inputs.
type ModelConfig struct {
	Enabled     bool   `envconfig:"MODEL_ENABLED" default:"true"`
	Trees       int    `envconfig:"MODEL_TREES" default:"100" validate:"min=1,max=1000"`
	MaxDepth    int    `envconfig:"MODEL_MAX_DEPTH" default:"10" validate:"min=1,max=64"`
	Seed        uint64 `envconfig:"MODEL_SEED" default:"42"`
	MinStations int    `envconfig:"MODEL_MIN_STATIONS" default:"2" validate:"min=1"`

	StationSource      string        `envconfig:"STATION_SOURCE" default:"csv" validate:"oneof=csv postgres http none"`
	StationCSVPath     string        `envconfig:"STATION_CSV_PATH" default:"merra2_data/cpcb_ground_latest.csv"`
	StationFeedURL     string        `envconfig:"STATION_FEED_URL" validate:"required_if=StationSource http,omitempty,url"`
	StationFeedAPIKey  string        `envconfig:"STATION_FEED_API_KEY"`
	StationFeedTimeout time.Duration `envconfig:"STATION_FEED_TIMEOUT" default:"10s"`

	CovariateDir  string `envconfig:"COVARIATE_DIR" default:"merra2_data"`
	MaxCovariates int    `envconfig:"MAX_COVARIATES" default:"10" validate:"min=1,max=64"`
}

// TelemetryConfig controls OpenTelemetry export.
type TelemetryConfig struct {
	Enabled      bool    `envconfig:"OTEL_ENABLED" default:"false"`
	OTLPEndpoint string  `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4317"`
	SampleRatio  float64 `envconfig:"OTEL_TRACES_SAMPLE_RATIO" default:"1" validate:"min=0,max=1"`
}

// SweepConfig controls the scheduled all-cities forecast.
type SweepConfig struct {
	Enabled     bool          `envconfig:"SWEEP_ENABLED" default:"true"`
	Schedule    string        `envconfig:"SWEEP_SCHEDULE" default:"0 0 * * *" validate:"required"`
	Concurrency int           `envconfig:"SWEEP_CONCURRENCY" default:"4" validate:"min=1,max=64"`
	Days        int           `envconfig:"SWEEP_DAYS" default:"7" validate:"min=1,max=14"`
	Timeout     time.Duration `envconfig:"SWEEP_TIMEOUT" default:"2m"`
}

// Load reads .env files (default: ./.env, ignored if absent) and the
// environment, then validates the result. Explicitly named files must exist.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFiles...); err != nil {
		return nil, fmt.Errorf("%w: load env file: %v", ErrInvalid, err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags and cross-field rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := cron.ParseStandard(c.Sweep.Schedule); err != nil {
		return fmt.Errorf("%w: SWEEP_SCHEDULE: %v", ErrInvalid, err)
	}
	if c.Model.StationSource == SourcePostgres && c.Database.URL == "" && c.Database.Host == "" {
		return fmt.Errorf("%w: postgres station source needs DATABASE_URL or DB_HOST", ErrInvalid)
	}
	return nil
}

// Level returns the zerolog level for LogLevel.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// Logger builds the process logger.
func (c *Config) Logger(service, version string) zerolog.Logger {
	return zerolog.New(os.Stdout).
		Level(c.Level()).
		With().
		Timestamp().
		Str("service", service).
		Str("version", version).
		Str("env", c.Environment).
		Logger()
}
