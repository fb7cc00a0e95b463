package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const appDir = "cuidd"

// DefaultDataDir returns where the ledger lives when --data-dir is not given.
// CUIDD_DATA_DIR wins, then XDG_DATA_HOME, then the platform's conventional
// application data location, then ./data.
func DefaultDataDir() string {
	if v := os.Getenv(EnvPrefix + "DATA_DIR"); v != "" {
		return v
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appDir)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		return "./data"
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir, "Library", "Application Support", appDir)
	case "windows":
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, appDir)
		}
		return filepath.Join(homeDir, "AppData", "Local", appDir)
	}

	if isWritableDir("/var/lib") {
		return filepath.Join("/var/lib", appDir)
	}
	return filepath.Join(homeDir, ".local", "share", appDir)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// isWritableDir reports whether path is a directory this process can create
// entries in.
func isWritableDir(path string) bool {
	if !isDir(path) {
		return false
	}
	f, err := os.CreateTemp(path, ".cuidd-probe-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return true
}
