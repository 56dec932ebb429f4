package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breatheroute/aqforecast/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)

	assert.True(t, cfg.Model.Enabled)
	assert.Equal(t, 100, cfg.Model.Trees)
	assert.Equal(t, 10, cfg.Model.MaxDepth)
	assert.Equal(t, uint64(42), cfg.Model.Seed)
	assert.Equal(t, config.SourceCSV, cfg.Model.StationSource)
	assert.Equal(t, 10, cfg.Model.MaxCovariates)

	assert.Equal(t, "0 0 * * *", cfg.Sweep.Schedule)
	assert.Equal(t, 7, cfg.Sweep.Days)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, zerolog.InfoLevel, cfg.Level())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MODEL_ENABLED", "false")
	t.Setenv("STATION_SOURCE", "http")
	t.Setenv("STATION_FEED_URL", "https://api.data.gov.in/resource/3b01bcb8")
	t.Setenv("SWEEP_SCHEDULE", "*/30 * * * *")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, zerolog.DebugLevel, cfg.Level())
	assert.False(t, cfg.Model.Enabled)
	assert.Equal(t, config.SourceHTTP, cfg.Model.StationSource)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("SWEEP_DAYS=3\nMODEL_TREES=25\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("SWEEP_DAYS")
		os.Unsetenv("MODEL_TREES")
	})

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Sweep.Days)
	assert.Equal(t, 25, cfg.Model.Trees)
}

func TestLoad_MissingEnvFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown source", map[string]string{"STATION_SOURCE": "kafka"}},
		{"http source without url", map[string]string{"STATION_SOURCE": "http"}},
		{"bad feed url", map[string]string{"STATION_FEED_URL": "not a url"}},
		{"sweep days above range", map[string]string{"SWEEP_DAYS": "15"}},
		{"bad cron", map[string]string{"SWEEP_SCHEDULE": "every day"}},
		{"bad port", map[string]string{"APP_PORT": "0"}},
		{"unparsable duration", map[string]string{"HTTP_READ_TIMEOUT": "soon"}},
		{"postgres without host", map[string]string{"STATION_SOURCE": "postgres", "DB_HOST": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.Load()
			assert.ErrorIs(t, err, config.ErrInvalid)
		})
	}
}
