package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755
	// PrivateDirPermissions keeps browsing data readable by the owner only
	PrivateDirPermissions = 0711

	// AppName names the configuration directory and files
	AppName = "cream-browser"
)

// ErrConfigNotFound is returned when no configuration script exists.
var ErrConfigNotFound = errors.New("configuration not found")

var (
	// ConfigDir holds rc.js, keybinds.json and the log (~/.config/cream-browser)
	ConfigDir string

	// DataDir holds browsing data (~/.cream-browser)
	DataDir string

	// DownloadsDir receives downloaded files
	DownloadsDir string

	// DatabasePath is the SQLite database file for visit history
	DatabasePath string

	// SessionFile is the saved panes and tabs
	SessionFile string

	// KeybindsFile is the optional keybinding overlay
	KeybindsFile string

	// LogFile is written when logging is enabled
	LogFile string

	// SystemConfigDirs are searched after ConfigDir
	SystemConfigDirs []string
)

// Initialize sets up the configuration directories.
// It creates ~/.config/cream-browser and ~/.cream-browser/downloads if they don't exist
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	userConfig, err := os.UserConfigDir()
	if err != nil {
		userConfig = filepath.Join(homeDir, ".config")
	}

	SetPaths(filepath.Join(userConfig, AppName), filepath.Join(homeDir, "."+AppName))

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}
	if err := os.MkdirAll(DataDir, PrivateDirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", DataDir, err)
	}
	if err := os.MkdirAll(DownloadsDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", DownloadsDir, err)
	}

	return nil
}

// SetPaths derives every path from the configuration and data
// directories without touching the filesystem.
func SetPaths(configDir, dataDir string) {
	ConfigDir = configDir
	DataDir = dataDir
	DownloadsDir = filepath.Join(DataDir, "downloads")
	DatabasePath = filepath.Join(DataDir, "history.db")
	SessionFile = filepath.Join(DataDir, "session.json")
	KeybindsFile = filepath.Join(ConfigDir, "keybinds.json")
	LogFile = filepath.Join(ConfigDir, AppName+".log")
	SystemConfigDirs = systemConfigDirs()
}

func systemConfigDirs() []string {
	env := os.Getenv("XDG_CONFIG_DIRS")
	if env == "" {
		env = "/etc/xdg"
	}

	var dirs []string
	for _, d := range filepath.SplitList(env) {
		if d != "" {
			dirs = append(dirs, filepath.Join(d, AppName))
		}
	}
	return dirs
}

// ScriptName returns the configuration script name for profile.
func ScriptName(profile string) string {
	if profile == "" {
		return "rc.js"
	}
	return "rc." + profile + ".js"
}

// FindConfig returns the configuration script to run. An explicit path
// must exist. Otherwise rc.<profile>.js and then rc.js are searched in
// ConfigDir followed by SystemConfigDirs.
func FindConfig(explicit, profile string) (string, error) {
	if explicit != "" {
		path := ExpandHome(explicit)
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, explicit)
		}
		return path, nil
	}

	names := []string{ScriptName("")}
	if profile != "" {
		names = []string{ScriptName(profile), ScriptName("")}
	}

	dirs := append([]string{ConfigDir}, SystemConfigDirs...)
	for _, name := range names {
		for _, dir := range dirs {
			if dir == "" {
				continue
			}
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}
	}

	return "", ErrConfigNotFound
}

// ExpandHome expands a leading ~/ to the home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, path[2:])
}
