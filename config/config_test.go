package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, "mock", cfg.Model.Provider)
	assert.Equal(t, 30*time.Second, cfg.Model.Timeout)
	assert.Equal(t, 20*time.Second, cfg.Tools.Timeout)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FillsDefaults(t *testing.T) {
	path := writeConfig(t, `
store:
  backend: sqlite
  path: /tmp/support.db
model:
  provider: openai
  name: gpt-4o-mini
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "/tmp/support.db", cfg.Store.Path)
	assert.Equal(t, "openai", cfg.Model.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Model.Name)
	// unset fields come from defaults
	assert.Equal(t, 30*time.Second, cfg.Model.Timeout)
	assert.Equal(t, 20*time.Second, cfg.Tools.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_Timeouts(t *testing.T) {
	path := writeConfig(t, `
tools:
  base_url: http://commerce.internal
  timeout: 5s
model:
  timeout: 10s
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Tools.Timeout)
	assert.Equal(t, 10*time.Second, cfg.Model.Timeout)
	assert.Equal(t, "http://commerce.internal", cfg.Tools.BaseURL)
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, "store:\n  backend: dynamo\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dynamo")
}

func TestLoad_RejectsUnknownProvider(t *testing.T) {
	path := writeConfig(t, "model:\n  provider: llama\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
