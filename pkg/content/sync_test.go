package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncFromCacheFreshInstall(t *testing.T) {
	root := t.TempDir()
	cache := filepath.Join(root, "cache")
	dest := filepath.Join(root, "store", "42")
	mustWrite(filepath.Join(cache, "addons", "mod.pbo"), "data")
	require.NoError(t, os.Symlink("addons", filepath.Join(cache, "alias")))

	require.NoError(t, syncFromCache(cache, dest))

	data, err := os.ReadFile(filepath.Join(dest, "addons", "mod.pbo"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))

	// symlinks are preserved as links, not followed
	target, err := os.Readlink(filepath.Join(dest, "alias"))
	require.NoError(t, err)
	assert.Equal(t, "addons", target)
}

func TestSyncFromCacheReplacesExisting(t *testing.T) {
	root := t.TempDir()
	cache := filepath.Join(root, "cache")
	dest := filepath.Join(root, "store", "42")
	mustWrite(filepath.Join(cache, "new.pbo"), "new")
	mustWrite(filepath.Join(dest, "old.pbo"), "old")

	require.NoError(t, syncFromCache(cache, dest))

	assert.FileExists(t, filepath.Join(dest, "new.pbo"))
	assert.NoFileExists(t, filepath.Join(dest, "old.pbo"))
}

func TestSyncFromCacheClearsStaleStaging(t *testing.T) {
	root := t.TempDir()
	cache := filepath.Join(root, "cache")
	dest := filepath.Join(root, "store", "42")
	mustWrite(filepath.Join(cache, "mod.pbo"), "x")
	// debris from an interrupted earlier sync
	mustWrite(filepath.Join(root, "store", "42.tmp", "partial.pbo"), "junk")

	require.NoError(t, syncFromCache(cache, dest))

	assert.FileExists(t, filepath.Join(dest, "mod.pbo"))
	assert.NoFileExists(t, filepath.Join(dest, "partial.pbo"))
	assert.NoDirExists(t, filepath.Join(root, "store", "42.tmp"))
}
