package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("trainengine-test")
	require.NoError(t, err)

	assert.Equal(t, "trainengine-test", cfg.App.Name)
	assert.False(t, cfg.App.IsDevelopment())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "SERVIVUELO", cfg.Supplier.Prefix)
	assert.Equal(t, 10*time.Second, cfg.Supplier.Timeout())
	assert.Equal(t, 4, cfg.Search.StationConcurrency)
	assert.Equal(t, "postgres://trainengine:@localhost:5432/trainengine?sslmode=disable", cfg.Database.DSN())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TRAINENGINE_APP_ENV", "development")
	t.Setenv("TRAINENGINE_SUPPLIER_BASE_URL", "https://api.servivuelo.example")
	t.Setenv("TRAINENGINE_SUPPLIER_TIMEOUT_MS", "2500")
	t.Setenv("TRAINENGINE_SEARCH_STATION_CONCURRENCY", "8")

	cfg, err := Load("trainengine-test")
	require.NoError(t, err)

	assert.True(t, cfg.App.IsDevelopment())
	assert.Equal(t, "https://api.servivuelo.example", cfg.Supplier.BaseURL)
	assert.Equal(t, 2500*time.Millisecond, cfg.Supplier.Timeout())
	assert.Equal(t, 8, cfg.Search.StationConcurrency)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate()
	require.Error(t, err)

	msg := err.Error()
	for _, want := range []string{
		"server.port",
		"database.host",
		"supplier.base_url",
		"supplier.prefix",
		"search.station_concurrency",
	} {
		assert.Contains(t, msg, want)
	}
}
