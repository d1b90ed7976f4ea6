package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// config is the persisted set of defaults a lifetrace.toml file can
// supply, layered under whatever flags the invoked subcommand sets
// explicitly — the same flags-over-manifest layering the pack's own
// project-manifest loader uses.
type config struct {
	Output  outputConfig  `toml:"output"`
	Sources sourcesConfig `toml:"sources"`
	Color   string        `toml:"color"` // "auto", "on", "off"
}

type outputConfig struct {
	Dir string `toml:"dir"`
}

type sourcesConfig struct {
	SQLiteDSN string `toml:"sqlite_dsn"`
}

func defaultConfig() config {
	return config{
		Output: outputConfig{Dir: "."},
		Color:  "auto",
	}
}

// loadConfig reads path if it exists, returning defaults unchanged
// when it doesn't — a missing lifetrace.toml is normal, not an error.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: stat %s: %w", path, err)
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}
