// Package config loads evo-qa configuration from INI files with an embedded
// defaults fallback: embedded → global (~/.config/evo-qa/config) → local
// (.evo-qa/config), the most local file winning per key.
package config

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed defaults
var defaultsFS embed.FS

// localConfigDir is the per-project config directory, relative to CWD.
const localConfigDir = ".evo-qa"

// Config is the resolved application configuration.
type Config struct {
	Values
}

// Load resolves configuration using the standard fallback chain. configDir
// overrides the global config directory; empty uses the default location.
func Load(configDir string) (*Config, error) {
	globalDir, err := resolveGlobalDir(configDir)
	if err != nil {
		return nil, err
	}

	// install defaults on first run so users have a template to edit
	if err := installDefaults(globalDir); err != nil {
		return nil, fmt.Errorf("install defaults: %w", err)
	}

	loader := newValuesLoader(defaultsFS)
	values, err := loader.Load(filepath.Join(localConfigDir, "config"), filepath.Join(globalDir, "config"))
	if err != nil {
		return nil, err
	}

	return &Config{Values: values}, nil
}

// resolveGlobalDir returns the global config directory, preferring the
// explicit override, then XDG config home.
func resolveGlobalDir(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, "evo-qa"), nil
}

// installDefaults creates the global config directory and writes the default
// config file if missing. Never overwrites an existing file.
func installDefaults(dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	path := filepath.Join(dir, "config")
	if _, err := os.Stat(path); err == nil {
		return nil // already present
	}

	data, err := defaultsFS.ReadFile("defaults/config")
	if err != nil {
		return fmt.Errorf("read embedded config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}
