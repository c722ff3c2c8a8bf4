package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfig overrides the configuration file location.
	EnvConfig = "SHOPDB_CONFIG"

	appDir = ".shopdb"
)

// GetConfigPath returns $SHOPDB_CONFIG, or ~/.shopdb/config.
func GetConfigPath() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config"), nil
}

// AppDir returns ~/.shopdb, the default home of the database and config.
func AppDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, appDir), nil
}

// DefaultDatabasePath returns ~/.shopdb/database.json.
func DefaultDatabasePath() (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "database.json"), nil
}
