package config_test

import (
	"testing"

	"comment-mirror/core/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "https://api.dantotsu.app", cfg.Api.BaseURL)
	assert.Equal(t, 30, cfg.Api.CooldownSeconds)
	assert.Equal(t, "dantotsu_global_db.csv", cfg.Mirror.Path)
	assert.Equal(t, "dantotsu_unique_media.json", cfg.Sync.CatalogPath)
	assert.Equal(t, 3, cfg.Sync.BackfillWorkers)
	assert.Equal(t, 5, cfg.Sync.GapWorkers)
	assert.Equal(t, 50, cfg.Sync.BatchSize)
	assert.Equal(t, 24, cfg.Activity.WindowHours)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://localhost:9999")
	t.Setenv("SYNC_BACKFILL_WORKERS", "8")
	t.Setenv("MIRROR_PATH", "/tmp/custom.tsv")

	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999", cfg.Api.BaseURL)
	assert.Equal(t, 8, cfg.Sync.BackfillWorkers)
	assert.Equal(t, "/tmp/custom.tsv", cfg.Mirror.Path)
}
