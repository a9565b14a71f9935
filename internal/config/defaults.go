package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// DefaultPaths holds the canonical socket and data paths for the
// current platform.
type DefaultPaths struct {
	DataDir             string
	IPCSocketPath       string
	TelemetrySocketPath string
}

func GetDefaultPaths() DefaultPaths {
	switch runtime.GOOS {
	case "windows":
		return windowsPaths()
	case "darwin":
		return darwinPaths()
	default:
		return unixPaths()
	}
}

func unixPaths() DefaultPaths {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return DefaultPaths{
		DataDir:             filepath.Join(dataHome, "pohwd"),
		IPCSocketPath:       "/tmp/pohwd-ipc.sock",
		TelemetrySocketPath: "/tmp/pohwd-sensor.sock",
	}
}

func darwinPaths() DefaultPaths {
	home, _ := os.UserHomeDir()
	return DefaultPaths{
		DataDir:             filepath.Join(home, "Library", "Application Support", "pohwd"),
		IPCSocketPath:       "/tmp/pohwd-ipc.sock",
		TelemetrySocketPath: "/tmp/pohwd-sensor.sock",
	}
}

func windowsPaths() DefaultPaths {
	appData := os.Getenv("LOCALAPPDATA")
	if appData == "" {
		home, _ := os.UserHomeDir()
		appData = filepath.Join(home, "AppData", "Local")
	}
	return DefaultPaths{
		DataDir:             filepath.Join(appData, "pohwd"),
		IPCSocketPath:       `\\.\pipe\pohwd-ipc`,
		TelemetrySocketPath: `\\.\pipe\pohwd-sensor`,
	}
}

// ConfigFile searches the usual locations for a per-repo config file,
// returning "" if none exist (callers then run on defaults).
func ConfigFile(repoRoot string) string {
	candidates := []string{
		filepath.Join(repoRoot, ".pohwd.toml"),
		filepath.Join(repoRoot, ".pohw", "config.toml"),
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}
