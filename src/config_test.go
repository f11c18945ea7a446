package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/cadenmyers13/oct2025-beamtime/src/render"
)

// TestLoadConfigMissingFile checks a nonexistent path quietly yields the
// built-in defaults.
func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Width != render.DefaultWidth || cfg.Height != render.DefaultHeight ||
		cfg.Scale != render.DefaultScale || cfg.LineWidth != render.DefaultLineWidth ||
		!cfg.Grid || cfg.LogLevel != "info" || len(cfg.Labels) != 0 {
		t.Fatalf("missing file gave %+v, want defaults", cfg)
	}
}

// TestLoadConfigOverridesDefaults verifies file values land on top of the
// defaults while unset keys keep them.
func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "width = 640\nscale = 2.5\nline_width = 3.0\ngrid = false\nlog_level = \"debug\"\n\n[[labels]]\nold = \"raw\"\nnew = \"cooked\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Width != 640 || cfg.Scale != 2.5 || cfg.LineWidth != 3.0 || cfg.Grid || cfg.LogLevel != "debug" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Height != render.DefaultHeight {
		t.Fatalf("height = %d, want untouched default %d", cfg.Height, render.DefaultHeight)
	}
	subs := cfg.labelSubs()
	if len(subs) != 1 || subs[0].Old != "raw" || subs[0].New != "cooked" {
		t.Fatalf("label rules = %+v, want the configured one", subs)
	}
}

// TestLoadConfigRejectsBadTOML ensures syntax errors surface instead of
// silently falling back.
func TestLoadConfigRejectsBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("width = \n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("want parse error for invalid TOML")
	}
}

// TestResolveConfigPath checks that an explicitly named settings file must
// exist while the empty default probes the per-user location without
// requiring it.
func TestResolveConfigPath(t *testing.T) {
	dir := t.TempDir()
	if _, err := resolveConfigPath(filepath.Join(dir, "none.toml")); err == nil {
		t.Fatal("want error for an explicit path that does not exist")
	}
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("width = 640\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	got, err := resolveConfigPath(path)
	if err != nil || got != path {
		t.Fatalf("resolveConfigPath(%q) = %q, %v", path, got, err)
	}
	if _, err := resolveConfigPath(""); err != nil {
		t.Fatalf("empty path should fall back to the default: %v", err)
	}
}

// TestApplyFlagOverrides verifies flags present on the command line beat the
// file settings while everything else keeps them.
func TestApplyFlagOverrides(t *testing.T) {
	fs := flag.NewFlagSet("beamplot", flag.ContinueOnError)
	fs.Int("width", render.DefaultWidth, "")
	fs.Int("height", render.DefaultHeight, "")
	fs.Float64("scale", render.DefaultScale, "")
	fs.String("log-level", "info", "")
	if err := fs.Parse([]string{"--width", "800", "--scale", "0.5"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg := DefaultConfig()
	cfg.Width, cfg.Height, cfg.LogLevel = 640, 480, "debug"
	applyFlagOverrides(&cfg, fs)
	if cfg.Width != 800 {
		t.Fatalf("width = %d, want the flag value 800", cfg.Width)
	}
	if cfg.Scale != 0.5 {
		t.Fatalf("scale = %g, want the flag value 0.5", cfg.Scale)
	}
	if cfg.Height != 480 || cfg.LogLevel != "debug" {
		t.Fatalf("flags not given must keep the file values: %+v", cfg)
	}
}

// TestLabelSubsFallback checks an empty rule list falls back to the standard
// substitutions.
func TestLabelSubsFallback(t *testing.T) {
	subs := Config{}.labelSubs()
	if len(subs) == 0 {
		t.Fatal("want built-in substitutions when the config defines none")
	}
	if subs[0].Old != "bkgd" {
		t.Fatalf("first substitution = %+v, want bkgd", subs[0])
	}
}
