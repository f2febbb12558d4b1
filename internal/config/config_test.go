package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://fedresurs.ru/encumbrances?group=Leasing&period=", cfg.Plan.BaseURL)
	assert.Equal(t, "2016-01", cfg.Plan.StartMonth)
	assert.Equal(t, "2025-06", cfg.Plan.EndMonth)
	assert.Equal(t, "plan.json", cfg.Plan.Output)

	assert.True(t, cfg.Fetch.Headless)
	assert.NotEmpty(t, cfg.Fetch.UserAgent)
	assert.Equal(t, 45, cfg.Fetch.NavTimeoutSecs)
	assert.Equal(t, 2000, cfg.Fetch.LoadMoreWaitMS)
	assert.Equal(t, 30, cfg.Fetch.MaxLoadMore)
	assert.Equal(t, 50, cfg.Fetch.RecycleEvery)
	assert.Equal(t, 2, cfg.Fetch.MaxAttempts)
	assert.Equal(t, 1.0, cfg.Fetch.PagesPerSecond)

	assert.Equal(t, "links.json", cfg.Harvest.Links)
	assert.Equal(t, "data/raw", cfg.Harvest.DataDir)
	assert.Equal(t, "data/backups", cfg.Harvest.BackupDir)
	assert.Equal(t, 10, cfg.Harvest.CheckpointEvery)

	assert.Equal(t, "output.xlsx", cfg.Export.Output)
	assert.Equal(t, "Сообщения", cfg.Export.Sheet)
	assert.Equal(t, []string{"Лизингополучатели", "Лизингополучатель"}, cfg.Export.IdentityFields)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FEDRESURS_HARVEST_DATA_DIR", "/tmp/alt-raw")
	t.Setenv("FEDRESURS_PLAN_START_MONTH", "2020-03")
	t.Setenv("FEDRESURS_FETCH_HEADLESS", "false")
	t.Setenv("FEDRESURS_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/alt-raw", cfg.Harvest.DataDir)
	assert.Equal(t, "2020-03", cfg.Plan.StartMonth)
	assert.False(t, cfg.Fetch.Headless)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "shouting", Format: "json"})
	assert.Error(t, err)
}
