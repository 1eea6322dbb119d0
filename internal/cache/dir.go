package cache

import (
	"os"
	"path/filepath"
)

// Environment variable names used for path resolution.
const (
	envCacheDir = "CACHE_DIR"
)

// Common application directory and path constants.
const (
	appName      = "broadcast-service"
	cacheDirName = "cache"
	tmpDir       = "/tmp"
	dotCache     = ".cache"
)

// ResolveDir returns the directory for durable cache entries. An explicitly
// configured directory wins, then the CACHE_DIR environment variable, then a
// directory under the user's home, then one under /tmp.
func ResolveDir(configured string) string {
	if configured != "" {
		return configured
	}

	// Honor the user-defined CACHE_DIR if it's set.
	if cacheDir := os.Getenv(envCacheDir); cacheDir != "" {
		return cacheDir
	}

	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		return filepath.Join(tmpDir, appName, cacheDirName)
	}

	return filepath.Join(homeDir, dotCache, appName)
}
