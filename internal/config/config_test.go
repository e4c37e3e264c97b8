package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.True(t, cfg.SeedEnabled())
	assert.Equal(t, 4*time.Second, cfg.UI.ToastWindow)
	assert.Equal(t, "en", cfg.UI.Locale)
	assert.Equal(t, "gpt-5-nano", cfg.AI.Model)
	assert.Equal(t, time.Duration(0), cfg.Store.Latency)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
server:
  port: 9090
store:
  driver: sqlite
  latency: 1.2s
ui:
  toast_window: 2s
digest:
  time: "08:30"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "data/todoboard.db", cfg.Store.DSN)
	assert.Equal(t, 1200*time.Millisecond, cfg.Store.Latency)
	assert.False(t, cfg.SeedEnabled())
	assert.Equal(t, 2*time.Second, cfg.UI.ToastWindow)
	assert.Equal(t, "08:30", cfg.Digest.Time)
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
[server]
port = 7070
read_only = true

[store]
driver = "memory"
seed = false
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.True(t, cfg.Server.ReadOnly)
	assert.False(t, cfg.SeedEnabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TODOBOARD_PORT", "6060")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 6060, cfg.Server.Port)
	assert.Equal(t, "sk-test", cfg.AI.APIKey)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	path := writeFile(t, "config.yaml", "store:\n  driver: mongo\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_PostgresRequiresDSN(t *testing.T) {
	path := writeFile(t, "config.yaml", "store:\n  driver: postgres\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "store.dsn")
}
