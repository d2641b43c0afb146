// Package xdg provides helpers to resolve XDG Base Directory paths for sapflow.
// It falls back to traditional locations when the XDG environment variables
// are not set and creates security-sensitive directories with private
// permissions.
package xdg

import (
	"os"
	"path/filepath"
)

// ConfigDir returns the XDG config directory for sapflow.
// The directory is created with private permissions (0700) if missing.
// It falls back to ~/.config/sapflow when XDG_CONFIG_HOME is unset.
func ConfigDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	dir := filepath.Join(base, "sapflow")
	if err := os.MkdirAll(dir, 0o700); err != nil { // private dir
		return "", err
	}
	return dir, nil
}
