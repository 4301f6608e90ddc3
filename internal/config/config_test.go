package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagedb/internal/storage"
)

func TestDefault_UsesStorageDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, storage.DefaultPageSize, cfg.Storage.PageSize)
	assert.Equal(t, storage.DefaultCacheSlots, cfg.Storage.CacheSlots)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EmptyPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesOnlySetFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "storage:\n  page_size: 8192\nlog:\n  level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8192, cfg.Storage.PageSize)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, storage.DefaultCacheSlots, cfg.Storage.CacheSlots, "unset fields keep the default")
}

func TestLoad_MissingFileIsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
