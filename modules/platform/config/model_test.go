package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.Empty(t, cfg.Validate())
	require.Equal(t, "1.0", cfg.Version)
	require.Equal(t, "openai", cfg.Settings.DefaultProvider)
	require.Empty(t, cfg.Settings.DefaultModel)
}

func TestServerURL(t *testing.T) {
	s := DefaultSettings()
	require.Equal(t, "ws://localhost:8080/ws", s.ServerURL())

	s.ServerHost = "pilot.internal"
	s.ServerPort = 443
	s.ServerSecure = true
	require.Equal(t, "wss://pilot.internal:443/ws", s.ServerURL())

	s.ServerPath = ""
	require.Equal(t, "wss://pilot.internal:443/ws", s.ServerURL())
}

func TestValidateCatchesBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		want   string
	}{
		{"bad server port", func(s *Settings) { s.ServerPort = 0 }, "server_port must be between 1 and 65535"},
		{"bad demo port", func(s *Settings) { s.DemoPort = 70000 }, "demo_port must be between 1 and 65535"},
		{"missing host", func(s *Settings) { s.ServerHost = "" }, "server_host is required"},
		{"missing provider", func(s *Settings) { s.DefaultProvider = "" }, "default_provider is required"},
		{"refresh too low", func(s *Settings) { s.RefreshRate = 50 }, "refresh_rate must be at least 100ms"},
		{"negative fetch delay", func(s *Settings) { s.FetchDelayMS = -1 }, "fetch_delay_ms must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg.Settings)
			require.Contains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestValidateNilSettings(t *testing.T) {
	cfg := &Config{Version: "1.0"}
	errs := cfg.Validate()
	require.Equal(t, []string{"settings is required"}, errs)
}

func TestGetLoggerConfigDefaults(t *testing.T) {
	s := &Settings{}
	lc := s.GetLoggerConfig()
	require.Equal(t, "info", lc.Level)
	require.Equal(t, 10000, lc.BufferSize)

	s.Logger = &LoggerConfig{Level: "debug"}
	require.Equal(t, "debug", s.GetLoggerConfig().Level)
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	other := &Config{
		Settings:   &Settings{ServerHost: "other"},
		Workspaces: map[string]string{"p1": "/src/p1"},
	}

	base.Merge(other)
	require.Equal(t, "other", base.Settings.ServerHost)
	require.Equal(t, "/src/p1", base.Workspaces["p1"])
	require.Equal(t, "1.0", base.Version) // empty version does not overwrite

	base.Merge(nil)
	require.Equal(t, "other", base.Settings.ServerHost)
}
