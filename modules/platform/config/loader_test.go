package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFileName)
	loader := NewLoader(path)

	cfg, err := loader.Load()
	require.NoError(t, err)
	require.NotNil(t, cfg.Settings)
	require.Equal(t, "localhost", cfg.Settings.ServerHost)

	// Load without create must not write the file
	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr))
}

func TestLoadWithCreateWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFileName)
	loader := NewLoader(path)

	_, err := loader.LoadWithCreate(true)
	require.NoError(t, err)
	require.True(t, loader.Exists())
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFileName)
	loader := NewLoader(path)

	cfg := DefaultConfig()
	cfg.Settings.ServerHost = "pilot.example.com"
	cfg.Settings.ServerPort = 9944
	cfg.Settings.ServerSecure = true
	cfg.Settings.DefaultProvider = "anthropic"
	cfg.Workspaces = map[string]string{"demo-app": "/tmp/demo-app"}

	require.NoError(t, loader.Save(cfg))

	loaded, err := loader.Load()
	require.NoError(t, err)
	require.Equal(t, "pilot.example.com", loaded.Settings.ServerHost)
	require.Equal(t, 9944, loaded.Settings.ServerPort)
	require.True(t, loaded.Settings.ServerSecure)
	require.Equal(t, "anthropic", loaded.Settings.DefaultProvider)
	require.Equal(t, "/tmp/demo-app", loaded.Workspaces["demo-app"])
}

func TestLoadFillsMissingSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFileName)

	// Hand-written config without logger or workspaces sections
	data := []byte("version: \"1.0\"\nsettings:\n  server_host: localhost\n  server_port: 8080\n  default_provider: openai\n  refresh_rate: 1000\n  demo_port: 8080\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)
	require.NotNil(t, cfg.Settings.Logger)
	require.Equal(t, "info", cfg.Settings.Logger.Level)
	require.NotNil(t, cfg.Workspaces)
}

func TestLoadRejectsBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("settings: [not: a: map"), 0644))

	_, err := NewLoader(path).Load()
	require.Error(t, err)
}

func TestGlobalConfigLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFileName)

	require.NoError(t, LoadGlobalWithCreate(path, true))
	t.Cleanup(func() { SetGlobal(nil, "") })

	require.Equal(t, path, GetGlobalPath())

	settings := DefaultSettings()
	settings.Theme = "light"
	require.NoError(t, UpdateSettings(settings))
	require.Equal(t, "light", GetGlobal().Settings.Theme)

	require.NoError(t, SaveGlobal())

	loaded, err := NewLoader(path).Load()
	require.NoError(t, err)
	require.Equal(t, "light", loaded.Settings.Theme)
}
