// Package config provides configuration file parsing and validation.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// DefaultConfigDir returns the config directory under the XDG config home.
func DefaultConfigDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "lmc"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "lmc"), nil
}

// ResolveConfigDir turns the value of --config into a config directory.
// Empty selects the default. A path to an existing .yaml or .yml file
// selects the directory containing it. It returns an error if:
//   - The path is not absolute
//   - The path contains parent directory traversal (..)
//   - The path points to a file without a .yaml or .yml extension
func ResolveConfigDir(path string) (string, error) {
	if path == "" {
		return DefaultConfigDir()
	}

	if !filepath.IsAbs(path) {
		return "", errors.New("config path must be absolute")
	}

	if strings.Contains(path, "..") {
		return "", errors.New("config path contains invalid traversal")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return filepath.Clean(path), nil
		}
		return "", err
	}

	if info.IsDir() {
		return filepath.Clean(path), nil
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return "", errors.New("config file must have .yaml or .yml extension")
	}

	return filepath.Dir(path), nil
}
