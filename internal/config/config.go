// Package config loads the engine's process-level configuration: the
// storage directory to recover databases from, the default database
// name, log level, and index auto-build threshold (§6.5). This is a
// thin concern outside the core engine logic — the engine itself only
// ever takes already-resolved values.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds every process-level setting the CLI resolves before
// constructing an Engine.
type Config struct {
	StorageDir            string `toml:"storage_dir"`
	DefaultDatabase       string `toml:"default_database"`
	LogLevel              string `toml:"log_level"`
	IndexAutoBuildMinRows int    `toml:"index_auto_build_min_rows"`
}

// Default returns the configuration used when no file and no
// environment overrides are present.
func Default() Config {
	return Config{
		StorageDir:            "",
		DefaultDatabase:       "default",
		LogLevel:              "info",
		IndexAutoBuildMinRows: 0,
	}
}

// Load reads path (if non-empty) as a TOML document on top of
// Default(); a non-empty path that does not exist is an error. It
// then applies VECTORDB_STORAGE_DIR and
// VECTORDB_LOG_LEVEL environment overrides, matching the teacher's own
// TOML-schema-loader shape repurposed for process configuration.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				return Config{}, fmt.Errorf("config: file %q: %w", path, err)
			}
			return Config{}, fmt.Errorf("config: opening %q: %w", path, err)
		}
		defer f.Close()
		if _, err := toml.NewDecoder(f).Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("config: decoding %q: %w", path, err)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("VECTORDB_STORAGE_DIR"); v != "" {
		cfg.StorageDir = v
	}
	if v := os.Getenv("VECTORDB_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}
