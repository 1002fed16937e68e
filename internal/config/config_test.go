package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Map.Zoom)

	_, err = LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfigDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[map]
zoom = 15
geolocation = "static"
lat = 38.72
lng = -9.14
geo-timeout = "2s"

[storage]
db = "/tmp/w.db"

[log]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Map.Zoom)
	assert.Equal(t, 15, *cfg.Map.Zoom)
	assert.Equal(t, "static", *cfg.Map.Geolocation)
	assert.InDelta(t, -9.14, *cfg.Map.Lng, 1e-9)
	assert.Equal(t, 2*time.Second, cfg.Map.GeoTimeout.Duration)
	assert.Equal(t, "/tmp/w.db", *cfg.Storage.DB)
	assert.Equal(t, "debug", *cfg.Log.Level)
	assert.Nil(t, cfg.Map.TileURL)
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[map]\ngeo-timeout = \"soon\"\n"), 0o644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestFromEnvAndMerge(t *testing.T) {
	t.Setenv("MAPTY_ZOOM", "11")
	t.Setenv("MAPTY_LOCALE", "pt_PT.UTF-8")
	t.Setenv("MAPTY_GEO_TIMEOUT", "750ms")
	t.Setenv("MAPTY_DB", "  ")

	overlay, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 11, *overlay.Map.Zoom)
	assert.Equal(t, 750*time.Millisecond, overlay.Map.GeoTimeout.Duration)
	assert.Nil(t, overlay.Storage.DB)

	fileZoom := 15
	fileDB := "/data/file.db"
	base := FileConfig{Map: MapConfig{Zoom: &fileZoom}, Storage: StorageConfig{DB: &fileDB}}
	merged := Merge(base, overlay)
	assert.Equal(t, 11, *merged.Map.Zoom)
	assert.Equal(t, "pt_PT.UTF-8", *merged.Map.Locale)
	assert.Equal(t, "/data/file.db", *merged.Storage.DB)
	assert.Equal(t, 15, *base.Map.Zoom)
}

func TestFromEnvRejectsBadNumbers(t *testing.T) {
	t.Setenv("MAPTY_LAT", "north")
	_, err := FromEnv()
	assert.Error(t, err)
}

func TestLoadDotEnvKeepsExistingVars(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("MAPTY_TILE_URL=https://tiles.example/{z}/{x}/{y}.png\nMAPTY_LOG_LEVEL=debug\n"), 0o644))
	t.Setenv("MAPTY_LOG_LEVEL", "warn")
	t.Setenv("MAPTY_TILE_URL", "")
	require.NoError(t, os.Unsetenv("MAPTY_TILE_URL"))

	require.NoError(t, LoadDotEnv(path))
	t.Cleanup(func() { _ = os.Unsetenv("MAPTY_TILE_URL") })
	assert.Equal(t, "https://tiles.example/{z}/{x}/{y}.png", os.Getenv("MAPTY_TILE_URL"))
	assert.Equal(t, "warn", os.Getenv("MAPTY_LOG_LEVEL"))

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_STATE_HOME", "/state")
	assert.Equal(t, filepath.Join("/cfg", "mapty", "config.toml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join("/data", "mapty", "mapty.db"), DefaultDBPath())
	assert.Equal(t, filepath.Join("/state", "mapty", "mapty.log"), DefaultLogPath())
}
