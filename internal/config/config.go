// Package config loads the fintrack configuration: defaults, an optional
// config.yaml, FINTRACK_ environment variables and a .env file.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// DirName is the per-user directory holding the config file, the session
// and the offline data files.
const DirName = ".fintrack"

// LoadEnv loads variables from a .env file in the working directory or its
// parent, if one exists. Variables already set in the environment win.
// It returns the file that was loaded, or "" when none was found.
func LoadEnv() (string, error) {
	for _, envFile := range []string{".env", filepath.Join("..", ".env")} {
		if _, err := os.Stat(envFile); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return "", err
		}
		if err := godotenv.Load(envFile); err != nil {
			return "", err
		}
		return envFile, nil
	}
	return "", nil
}

// GetEnv retrieves an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	return value
}

// DefaultDir returns $HOME/.fintrack, or .fintrack when the home directory
// cannot be resolved.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return DirName
	}
	return filepath.Join(home, DirName)
}
