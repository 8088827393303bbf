package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 10, cfg.Forecast.Years)
	assert.Equal(t, 3, cfg.Forecast.HistoryYears)
	assert.Equal(t, "https://www.dohod.ru/ik/analytics/dividend", cfg.Dohod.BaseURL)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "out", cfg.Export.Dir)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("FORECAST_YEARS", "5")
	t.Setenv("FORECAST_HISTORY_YEARS", "2")
	t.Setenv("DOHOD_MAX_STOCKS", "20")
	t.Setenv("ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Forecast.Years)
	assert.Equal(t, 2, cfg.Forecast.HistoryYears)
	assert.Equal(t, 20, cfg.Dohod.MaxStocks)
	assert.Equal(t, "production", cfg.Env)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("ENV", "testing")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidForecastYears(t *testing.T) {
	t.Setenv("FORECAST_YEARS", "-1")

	_, err := Load()
	assert.Error(t, err)
}

func TestGetEnvAsInt_Malformed(t *testing.T) {
	t.Setenv("SOME_INT", "not-a-number")
	assert.Equal(t, 42, getEnvAsInt("SOME_INT", 42))
}
