package app

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	appDirName     = "vizofit"
	configFileName = "config.yaml"
	dbFileName     = "vizofit.db"
)

// DefaultConfigPath is the per-user config file of the local client.
func DefaultConfigPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, appDirName, configFileName), nil
}

// DefaultDBPath is the per-user sqlite store of the local client.
func DefaultDBPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, appDirName, dbFileName), nil
}
