package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/DonovanMods/linux-mc-launcher/internal/domain"

	"gopkg.in/yaml.v3"
)

// Defaults applied when config.yaml leaves a field unset.
const (
	DefaultMirror              = "bmclapi"
	DefaultDownloadConcurrency = 16
	DefaultProcessorTimeout    = 10 * time.Minute
)

// Environment variables that override config.yaml.
const (
	EnvRootDir             = "LMC_ROOT_DIR"
	EnvRestrictedNetwork   = "LMC_RESTRICTED_NETWORK"
	EnvDownloadConcurrency = "LMC_DOWNLOAD_CONCURRENCY"
)

// Config holds global launcher settings
type Config struct {
	RootDir             string            `yaml:"root_dir"`
	RestrictedNetwork   bool              `yaml:"restricted_network"`
	Mirror              string            `yaml:"mirror"`
	DownloadConcurrency int               `yaml:"download_concurrency"`
	JavaPaths           []string          `yaml:"java_paths,omitempty"`
	LinkMethod          domain.LinkMethod `yaml:"-"`
	LinkMethodStr       string            `yaml:"link_method"`
	ProcessorTimeout    time.Duration     `yaml:"processor_timeout"`
	SelectedInstance    string            `yaml:"selected_instance,omitempty"`
	SelectedAccount     string            `yaml:"selected_account,omitempty"`
	PackFormats         map[int]string    `yaml:"pack_formats,omitempty"`
}

// DefaultRootDir returns the default Minecraft root under the XDG data home.
func DefaultRootDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "lmc", "minecraft")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "minecraft")
	}
	return filepath.Join(home, ".local", "share", "lmc", "minecraft")
}

// Load reads configuration from the given directory
func Load(configDir string) (*Config, error) {
	cfg := &Config{
		RootDir:             DefaultRootDir(),
		Mirror:              DefaultMirror,
		DownloadConcurrency: DefaultDownloadConcurrency,
		LinkMethod:          domain.LinkSymlink,
		ProcessorTimeout:    DefaultProcessorTimeout,
	}

	configPath := filepath.Join(configDir, "config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil // Return defaults
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.LinkMethodStr != "" {
		cfg.LinkMethod = domain.ParseLinkMethod(cfg.LinkMethodStr)
	}
	if cfg.DownloadConcurrency < 1 {
		return nil, fmt.Errorf("%w: download_concurrency must be at least 1", domain.ErrInvalidConfig)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from LMC_* environment variables.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvRootDir); ok && v != "" {
		c.RootDir = v
	}
	if v, ok := os.LookupEnv(EnvRestrictedNetwork); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrInvalidConfig, EnvRestrictedNetwork, err)
		}
		c.RestrictedNetwork = b
	}
	if v, ok := os.LookupEnv(EnvDownloadConcurrency); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidConfig, EnvDownloadConcurrency)
		}
		c.DownloadConcurrency = n
	}
	return nil
}

// Save writes configuration to the given directory
func (c *Config) Save(configDir string) error {
	c.LinkMethodStr = c.LinkMethod.String()
	return writeYAML(filepath.Join(configDir, "config.yaml"), c)
}

// writeYAML marshals v to path through a temp file.
func writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// readYAML unmarshals path into v. A missing file leaves v untouched.
func readYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return nil
}
