package config

import (
	"os"
	"path/filepath"
)

// GetDefaultConfigPath returns the default config file path
func GetDefaultConfigPath() string {
	// Try current directory first
	cwd, err := os.Getwd()
	if err == nil {
		return filepath.Join(cwd, DefaultConfigFileName)
	}

	return DefaultConfigFileName
}

// GetUserConfigDir returns the user's config directory for pilotdeck
func GetUserConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".config", "pilotdeck"), nil
}

// GetCacheDir returns the cache directory for pilotdeck
func GetCacheDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".cache", "pilotdeck"), nil
}

// GetDataDir returns the data directory for pilotdeck
func GetDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".local", "share", "pilotdeck"), nil
}

// EnsureDirectories creates all necessary directories
func EnsureDirectories() error {
	dirs := []func() (string, error){
		GetUserConfigDir,
		GetCacheDir,
		GetDataDir,
	}

	for _, dirFunc := range dirs {
		dir, err := dirFunc()
		if err != nil {
			continue // Skip if we can't get the directory path
		}

		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return nil
}

// DefaultLogFilePath returns the default log file location, creating the
// config directory if needed. Returns empty string when no home is available.
func DefaultLogFilePath() string {
	dir, err := GetUserConfigDir()
	if err != nil {
		return ""
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return ""
	}

	return filepath.Join(dir, "pilotdeck.log")
}
