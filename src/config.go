package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/cadenmyers13/oct2025-beamtime/src/analysis"
	"github.com/cadenmyers13/oct2025-beamtime/src/render"
)

// Config holds the file-configurable defaults. Flags given on the command
// line always win over the file.
type Config struct {
	Width     int         `toml:"width"`
	Height    int         `toml:"height"`
	Scale     float64     `toml:"scale"`
	LineWidth float64     `toml:"line_width"`
	Grid      bool        `toml:"grid"`
	LogLevel  string      `toml:"log_level"`
	Labels    []LabelRule `toml:"labels"`
}

// LabelRule is one filename-to-legend substitution applied by the waterfall
// layout, e.g. old = "bkgd", new = "background".
type LabelRule struct {
	Old string `toml:"old"`
	New string `toml:"new"`
}

// DefaultConfig returns the built-in settings used when no file exists.
func DefaultConfig() Config {
	return Config{
		Width:     render.DefaultWidth,
		Height:    render.DefaultHeight,
		Scale:     render.DefaultScale,
		LineWidth: render.DefaultLineWidth,
		Grid:      true,
		LogLevel:  "info",
	}
}

// defaultConfigPath is the per-user location probed when --config is not
// given: <user config dir>/beamplot/config.toml.
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "beamplot", "config.toml")
}

// resolveConfigPath picks the settings file. An explicit path must exist;
// an empty one falls back to the probed per-user location.
func resolveConfigPath(explicit string) (string, error) {
	if explicit == "" {
		return defaultConfigPath(), nil
	}
	if _, err := os.Stat(explicit); err != nil {
		return "", fmt.Errorf("config: %w", err)
	}
	return explicit, nil
}

// applyFlagOverrides copies the flags actually present on the command line
// over the file settings, so an explicit flag always wins.
func applyFlagOverrides(cfg *Config, fs *flag.FlagSet) {
	fs.Visit(func(f *flag.Flag) {
		v := f.Value.(flag.Getter).Get()
		switch f.Name {
		case "width":
			cfg.Width = v.(int)
		case "height":
			cfg.Height = v.(int)
		case "scale":
			cfg.Scale = v.(float64)
		case "log-level":
			cfg.LogLevel = v.(string)
		}
	})
}

// LoadConfig reads a TOML settings file on top of the defaults. A missing
// file is not an error; callers that require the file check existence
// themselves.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// labelSubs converts the configured rules, falling back to the built-in
// substitutions when the file defines none.
func (c Config) labelSubs() []analysis.LabelSub {
	if len(c.Labels) == 0 {
		return analysis.DefaultLabelSubs
	}
	subs := make([]analysis.LabelSub, len(c.Labels))
	for i, r := range c.Labels {
		subs[i] = analysis.LabelSub{Old: r.Old, New: r.New}
	}
	return subs
}
