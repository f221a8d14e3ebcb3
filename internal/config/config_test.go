package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	fs := NewFlagSet("mapty")
	require.NoError(t, fs.Parse(args))
	return Load(fs)
}

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestLoad_Defaults(t *testing.T) {
	home := isolateHome(t)

	cfg, err := load(t)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".mapty"), cfg.DataDir)
	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Equal(t, 13, cfg.Map.Zoom)
	assert.Equal(t, time.Second, cfg.Map.PanDuration)
	assert.Equal(t, 10*time.Second, cfg.Geolocation.Timeout)
	assert.False(t, cfg.Geolocation.HasPosition)
	assert.Equal(t, filepath.Join(home, ".mapty", "mapty.log"), cfg.Log.File)
	assert.Equal(t, 10, cfg.Log.MaxSizeMB)
}

func TestLoad_Flags(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()

	cfg, err := load(t, "--data-dir", dir, "--store", "sqlite", "--zoom", "9", "--lat", "51.5", "--lng", "-0.12", "--pan-duration", "250ms")
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, 9, cfg.Map.Zoom)
	assert.Equal(t, 250*time.Millisecond, cfg.Map.PanDuration)
	assert.True(t, cfg.Geolocation.HasPosition)
	assert.Equal(t, 51.5, cfg.Geolocation.Latitude)
	assert.Equal(t, -0.12, cfg.Geolocation.Longitude)
}

func TestLoad_OnlyLatitudeIsNotAPosition(t *testing.T) {
	isolateHome(t)

	cfg, err := load(t, "--lat", "10")
	require.NoError(t, err)
	assert.False(t, cfg.Geolocation.HasPosition)
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolateHome(t)
	t.Setenv("MAPTY_STORE_BACKEND", "sqlite")
	t.Setenv("MAPTY_MAP_ZOOM", "5")
	t.Setenv("MAPTY_GEOLOCATION_LATITUDE", "48.85")
	t.Setenv("MAPTY_GEOLOCATION_LONGITUDE", "2.35")

	cfg, err := load(t)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, 5, cfg.Map.Zoom)
	assert.True(t, cfg.Geolocation.HasPosition)
	assert.Equal(t, 48.85, cfg.Geolocation.Latitude)
	assert.Equal(t, 2.35, cfg.Geolocation.Longitude)
}

func TestLoad_ConfigFile(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "mapty.yaml")
	content := `
store:
  backend: sqlite
map:
  zoom: 15
geolocation:
  latitude: 40.7
  longitude: -74.0
  timeout: 3s
log:
  max_backups: 7
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := load(t, "--config", path, "--zoom", "11")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, 11, cfg.Map.Zoom, "flags win over the file")
	assert.True(t, cfg.Geolocation.HasPosition)
	assert.Equal(t, 40.7, cfg.Geolocation.Latitude)
	assert.Equal(t, 3*time.Second, cfg.Geolocation.Timeout)
	assert.Equal(t, 7, cfg.Log.MaxBackups)
}

func TestLoad_DefaultConfigFileInHome(t *testing.T) {
	home := isolateHome(t)
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".mapty"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".mapty", "config.yaml"), []byte("map:\n  zoom: 4\n"), 0o644))

	cfg, err := load(t)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Map.Zoom)
}

func TestLoad_Validation(t *testing.T) {
	isolateHome(t)

	cases := map[string][]string{
		"backend":     {"--store", "redis"},
		"zoom low":    {"--zoom", "0"},
		"zoom high":   {"--zoom", "19"},
		"latitude":    {"--lat", "95", "--lng", "0"},
		"longitude":   {"--lat", "0", "--lng", "200"},
		"geo timeout": {"--geo-timeout", "0s"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := load(t, args...)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingExplicitConfigFile(t *testing.T) {
	isolateHome(t)
	_, err := load(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
