// Package util provides small path and test helpers shared across hubsync.
package util

import (
	"os"
	"path/filepath"
	"strings"
)

// HomeDir returns the user's home directory.
func HomeDir() string {
	home, _ := os.UserHomeDir()
	return home
}

// ExpandPath resolves a configured path against the given home root.
// "~" and "~/..." expand under home; relative paths are resolved under
// home as well, so that every default stays inside one overridable root.
// Absolute paths are returned unchanged.
func ExpandPath(path, home string) string {
	switch {
	case path == "":
		return ""
	case path == "~":
		return home
	case strings.HasPrefix(path, "~/"):
		return filepath.Join(home, path[2:])
	case filepath.IsAbs(path):
		return filepath.Clean(path)
	default:
		return filepath.Join(home, path)
	}
}

// HubsyncDir returns the hubsync state directory under the given home.
func HubsyncDir(home string) string {
	return filepath.Join(home, ".hubsync")
}

// DefaultConfigPath returns the config file path under the given home.
func DefaultConfigPath(home string) string {
	return filepath.Join(HubsyncDir(home), "config.yaml")
}

// DefaultHubPath returns the default hub repo path under the given home.
func DefaultHubPath(home string) string {
	return filepath.Join(HubsyncDir(home), "hub")
}

// DefaultBackupsPath returns the default backup root under the given home.
func DefaultBackupsPath(home string) string {
	return filepath.Join(HubsyncDir(home), "backups")
}
