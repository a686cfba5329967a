// Package config loads pgdrift settings from an optional YAML file and
// PGDRIFT_* environment variables, the environment taking precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is the config file looked up in the working directory
// when no explicit path is given.
const DefaultFileName = "pgdrift.yml"

// Config holds connection targets and artifact locations.
type Config struct {
	SourceURL     string `yaml:"source_url" env:"PGDRIFT_SOURCE_URL"`
	TargetURL     string `yaml:"target_url" env:"PGDRIFT_TARGET_URL"`
	MigrationsDir string `yaml:"migrations_dir" env:"PGDRIFT_MIGRATIONS_DIR"`
	SnapshotsPath string `yaml:"snapshots_path" env:"PGDRIFT_SNAPSHOTS_PATH"`
}

// Load reads configuration in ascending precedence: built-in defaults,
// the YAML file, then environment variables. An empty path means the
// default file name, which may be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg, err := defaults()
	if err != nil {
		return nil, err
	}

	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case explicit || !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	return cfg, nil
}

func defaults() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve home directory: %w", err)
	}
	base := filepath.Join(home, ".pgdrift")
	return &Config{
		MigrationsDir: filepath.Join(base, "migrations"),
		SnapshotsPath: filepath.Join(base, "snapshots.db"),
	}, nil
}
