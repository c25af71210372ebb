package config

import (
	"fmt"
)

// Config represents the main configuration
type Config struct {
	Version  string    `yaml:"version"`
	Settings *Settings `yaml:"settings"`
	// Workspaces maps project IDs to local checkout paths. Projects with a
	// workspace get git branch/status enrichment on the dashboard.
	Workspaces map[string]string `yaml:"workspaces,omitempty"`
}

// LoggerConfig represents logger configuration
type LoggerConfig struct {
	Level      string `yaml:"level" json:"level"`             // debug, info, warn, error
	FilePath   string `yaml:"file_path" json:"file_path"`     // Log file path (empty = no file)
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb"` // Max log file size before rotation
	BufferSize int    `yaml:"buffer_size" json:"buffer_size"` // Log buffer size for TUI
}

// DefaultLoggerConfig returns default logger configuration
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:      "info",
		FilePath:   "", // Will default to ~/.config/pilotdeck/pilotdeck.log
		MaxSizeMB:  10,
		BufferSize: 10000,
	}
}

// Settings represents global application settings
type Settings struct {
	// Backend connection
	ServerHost   string `yaml:"server_host" json:"server_host"`
	ServerPort   int    `yaml:"server_port" json:"server_port"`
	ServerPath   string `yaml:"server_path" json:"server_path"`
	ServerSecure bool   `yaml:"server_secure" json:"server_secure"` // wss:// when true

	// Model selection
	DefaultProvider string `yaml:"default_provider" json:"default_provider"`
	DefaultModel    string `yaml:"default_model,omitempty" json:"default_model,omitempty"` // empty = provider's first model

	// Logger configuration
	Logger *LoggerConfig `yaml:"logger,omitempty" json:"logger,omitempty"`

	// UI settings
	Theme          string `yaml:"theme" json:"theme"`               // dark, light, auto
	RefreshRate    int    `yaml:"refresh_rate" json:"refresh_rate"` // ms
	ShowTimestamps bool   `yaml:"show_timestamps" json:"show_timestamps"`
	RenderMarkdown bool   `yaml:"render_markdown" json:"render_markdown"`

	// Demo backend
	DemoPort     int `yaml:"demo_port" json:"demo_port"`
	FetchDelayMS int `yaml:"fetch_delay_ms" json:"fetch_delay_ms"` // simulated latency for dashboard loads
}

// ServerURL builds the websocket URL from the connection settings.
func (s *Settings) ServerURL() string {
	scheme := "ws"
	if s.ServerSecure {
		scheme = "wss"
	}
	path := s.ServerPath
	if path == "" {
		path = "/ws"
	}
	return fmt.Sprintf("%s://%s:%d%s", scheme, s.ServerHost, s.ServerPort, path)
}

// GetLoggerConfig returns the logger config, applying defaults if unset
func (s *Settings) GetLoggerConfig() *LoggerConfig {
	if s.Logger != nil {
		return s.Logger
	}
	return DefaultLoggerConfig()
}

// DefaultSettings returns default configuration settings
func DefaultSettings() *Settings {
	return &Settings{
		// Backend connection
		ServerHost: "localhost",
		ServerPort: 8080,
		ServerPath: "/ws",

		// Model selection
		DefaultProvider: "openai",

		// Logger configuration
		Logger: DefaultLoggerConfig(),

		// UI settings
		Theme:          "dark",
		RefreshRate:    1000, // 1 second
		ShowTimestamps: true,
		RenderMarkdown: true,

		// Demo backend
		DemoPort:     8080,
		FetchDelayMS: 600,
	}
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:    "1.0",
		Settings:   DefaultSettings(),
		Workspaces: map[string]string{},
	}
}

// Validate validates the configuration
func (c *Config) Validate() []string {
	var errors []string

	if c.Settings == nil {
		errors = append(errors, "settings is required")
		return errors
	}

	if c.Settings.ServerHost == "" {
		errors = append(errors, "server_host is required")
	}

	if c.Settings.ServerPort < 1 || c.Settings.ServerPort > 65535 {
		errors = append(errors, "server_port must be between 1 and 65535")
	}

	if c.Settings.DemoPort < 1 || c.Settings.DemoPort > 65535 {
		errors = append(errors, "demo_port must be between 1 and 65535")
	}

	if c.Settings.DefaultProvider == "" {
		errors = append(errors, "default_provider is required")
	}

	if c.Settings.RefreshRate < 100 {
		errors = append(errors, "refresh_rate must be at least 100ms")
	}

	if c.Settings.FetchDelayMS < 0 {
		errors = append(errors, "fetch_delay_ms must not be negative")
	}

	return errors
}

// Merge merges another config into this one (other takes precedence)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Version != "" {
		c.Version = other.Version
	}

	if other.Settings != nil {
		c.Settings = other.Settings
	}

	if len(other.Workspaces) > 0 {
		c.Workspaces = other.Workspaces
	}
}
