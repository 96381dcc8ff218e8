package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the runtime configuration of the scheduling core.
type Config struct {
	// ConflictPolicy decides how a recurring request with partial
	// conflicts is handled: "reject_series" or "skip_occurrences".
	ConflictPolicy string `yaml:"conflict_policy"`

	// DirectoryRatePerSecond bounds directory gateway lookups; zero
	// disables limiting.
	DirectoryRatePerSecond int `yaml:"directory_rate_per_second"`

	// DirectoryRateBurst is the token-bucket burst for directory lookups.
	DirectoryRateBurst int `yaml:"directory_rate_burst"`

	// PostgresDSN, when set, selects the Postgres-backed gateway and
	// interval store; empty keeps the in-memory implementations.
	PostgresDSN string `yaml:"postgres_dsn"`
}

// Default returns the in-memory default configuration.
func Default() *Config {
	return &Config{
		ConflictPolicy:         "reject_series",
		DirectoryRatePerSecond: 100,
		DirectoryRateBurst:     20,
	}
}

// Normalize fills missing or invalid values so partially filled configs
// still behave.
func (c *Config) Normalize() {
	switch c.ConflictPolicy {
	case "reject_series", "skip_occurrences":
	default:
		c.ConflictPolicy = "reject_series"
	}
	if c.DirectoryRatePerSecond < 0 {
		c.DirectoryRatePerSecond = 0
	}
	if c.DirectoryRatePerSecond > 0 && c.DirectoryRateBurst < 1 {
		c.DirectoryRateBurst = 1
	}
}

// Load reads configuration from the given YAML path. A missing file yields
// the defaults and writes them back for the next run.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := Default()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save writes the configuration atomically with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".campusplan-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
