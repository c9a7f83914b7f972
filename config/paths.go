// ABOUTME: XDG-based data and config directory resolution.
// ABOUTME: Checks XDG_DATA_HOME / XDG_CONFIG_HOME, falls back to ~/.local/share and ~/.config.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const appDir = "swarmbase"

// DefaultDataDir returns $XDG_DATA_HOME/swarmbase or ~/.local/share/swarmbase.
func DefaultDataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appDir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", appDir), nil
}

// DefaultConfigDir returns $XDG_CONFIG_HOME/swarmbase or ~/.config/swarmbase.
func DefaultConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", appDir), nil
}
