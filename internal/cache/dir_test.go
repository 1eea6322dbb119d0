package cache_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/book-expert/broadcast-service/internal/cache"
	"github.com/stretchr/testify/assert"
)

func TestResolveDir_Configured(t *testing.T) {
	t.Setenv("CACHE_DIR", "/from/env")

	assert.Equal(t, "/configured", cache.ResolveDir("/configured"))
}

func TestResolveDir_WithOverride(t *testing.T) {
	t.Setenv("CACHE_DIR", "/custom/cache/dir")

	assert.Equal(t, "/custom/cache/dir", cache.ResolveDir(""))
}

func TestResolveDir_OSDefault(t *testing.T) {
	t.Setenv("CACHE_DIR", "")

	homeDir, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Skipping test: could not determine user home directory")
	}

	assert.Equal(t, filepath.Join(homeDir, ".cache", "broadcast-service"), cache.ResolveDir(""))
}
