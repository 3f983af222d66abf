// Package paths resolves per-user scanlens directories.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "scanlens"

// ConfigDir returns the config directory for scanlens.
// Order: XDG_CONFIG_HOME/scanlens, platform-specific fallback.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("AppData"); appData != "" {
			return filepath.Join(appData, "Scanlens")
		}
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName)
}

// DataDir returns the data directory for scanlens, the default blob root.
// Order: XDG_DATA_HOME/scanlens, platform-specific fallback.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	if runtime.GOOS == "windows" {
		if localAppData := os.Getenv("LocalAppData"); localAppData != "" {
			return filepath.Join(localAppData, "Scanlens")
		}
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", appName)
}

// DefaultConfigFile is read when --config is not given. A missing file is
// not an error.
func DefaultConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
