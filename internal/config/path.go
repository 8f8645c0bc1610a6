// Package config loads finsight settings from viper and resolves file paths.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

const appName = "finsight"

// ExpandPath expands ~ and environment variables in a file path.
// It handles both ~ for home directory and $VAR style environment variables.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}

// ConfigDir returns the directory searched for config.yaml.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	return ExpandPath(filepath.Join("~", ".config", appName))
}

// DataDir returns the directory holding the database and saved credentials.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	return ExpandPath(filepath.Join("~", ".local", "share", appName))
}

// DefaultDatabasePath returns the default SQLite location.
func DefaultDatabasePath() string {
	return filepath.Join(DataDir(), appName+".db")
}
