package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-pos-console/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	c := config.New()
	assert.Equal(t, "http://localhost:8080", c.GetDefaultOrigin())
	assert.Equal(t, "/api/v1", c.GetAPIPrefix())
	assert.Equal(t, config.PrefsBackendFile, c.GetPrefsBackend())
	assert.Equal(t, filepath.Join("./data", "prefs.json"), c.GetPrefsFile())
	assert.Equal(t, "DEV", c.GetEnv())
}

func TestLoadLayersFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "console.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app_name: Till 4
backend:
  default_origin: https://pos.example.com
  request_timeout: 30s
storage:
  backend: memory
`), 0o600))

	t.Setenv("BACKEND_API_PREFIX", "/api/v2")

	c, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Till 4", c.GetAppName())
	assert.Equal(t, "https://pos.example.com", c.GetDefaultOrigin())
	assert.Equal(t, 30*time.Second, c.GetRequestTimeout())
	assert.Equal(t, "/api/v2", c.GetAPIPrefix())
	assert.Equal(t, config.PrefsBackendMemory, c.GetPrefsBackend())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "console.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend:\n  default_origin: https://file.example.com\n"), 0o600))
	t.Setenv("BACKEND_ORIGIN", "https://env.example.com")

	c, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", c.GetDefaultOrigin())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "POS Console", c.GetAppName())
}

func TestLoadValidation(t *testing.T) {
	t.Run("redis backend requires url", func(t *testing.T) {
		t.Setenv("PREFS_BACKEND", "redis")
		_, err := config.Load("")
		require.Error(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		t.Setenv("PREFS_BACKEND", "cookie")
		_, err := config.Load("")
		require.Error(t, err)
	})
}
