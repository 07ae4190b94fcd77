package content

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tacticalops/armalaunch/pkg/config"
	"github.com/tacticalops/armalaunch/pkg/paths"
	"github.com/tacticalops/armalaunch/pkg/steamcmd"
)

// fakeTool is a steamcmd.Client that materializes fake content instead
// of talking to Steam.
type fakeTool struct {
	// downloadErr maps item id to the error its download returns.
	downloadErr map[int64]error
	// appErr is returned from every EnsureApp call.
	appErr error
	// populate, when set, is called after a successful download to
	// write the cache directory.
	populate func(itemID int64)

	downloads []int64
	appCalls  []steamcmd.AppOptions
}

func (f *fakeTool) EnsureApp(ctx context.Context, opts steamcmd.AppOptions) error {
	f.appCalls = append(f.appCalls, opts)
	return f.appErr
}

func (f *fakeTool) WorkshopDownload(ctx context.Context, gameID, itemID int64, validate bool) error {
	f.downloads = append(f.downloads, itemID)
	if err := f.downloadErr[itemID]; err != nil {
		return err
	}
	if f.populate != nil {
		f.populate(itemID)
	}
	return nil
}

// fakeOracle answers TimeUpdated from a fixed map; absent ids are
// reported as unknown.
type fakeOracle struct {
	epochs map[int64]int64
}

func (f *fakeOracle) TimeUpdated(ctx context.Context, itemID int64) (int64, bool) {
	epoch, ok := f.epochs[itemID]
	return epoch, ok
}

// testEnv bundles a manager wired against temp directories and fakes.
type testEnv struct {
	settings *config.Settings
	layout   paths.Layout
	manager  *Manager
	tool     *fakeTool
	oracle   *fakeOracle
	now      time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()

	settings := &config.Settings{
		ArmaRoot:           filepath.Join(root, "arma3"),
		ArmaCommon:         filepath.Join(root, "common"),
		ArmaInstance:       filepath.Join(root, "instance"),
		ArmaCustomMods:     filepath.Join(root, "instance", "custom-mods"),
		SteamLibraryRoot:   filepath.Join(root, "steam"),
		TmpDir:             filepath.Join(root, "tmp"),
		ArmaAppID:          233780,
		ArmaWorkshopGameID: 107410,
	}
	layout := paths.NewLayout(settings)
	require.NoError(t, layout.EnsureDirs())

	tool := &fakeTool{downloadErr: map[int64]error{}}
	oracle := &fakeOracle{epochs: map[int64]int64{}}
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	m := NewManager(settings, layout, tool, oracle)
	m.now = func() time.Time { return now }
	m.downloadBackoff = steamcmd.Backoff{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}

	env := &testEnv{
		settings: settings,
		layout:   layout,
		manager:  m,
		tool:     tool,
		oracle:   oracle,
		now:      now,
	}
	tool.populate = env.writeCache
	return env
}

// writeCache writes a minimal valid mod tree into the SteamCMD cache
// location for an item.
func (e *testEnv) writeCache(itemID int64) {
	dir := paths.WorkshopCacheDir(e.settings, itemID)
	writeModTree(dir)
}

// writeModTree lays down addons/mod.pbo, meta.cpp, and a signing key.
func writeModTree(dir string) {
	mustMkdir(filepath.Join(dir, "addons"))
	mustWrite(filepath.Join(dir, "addons", "mod.pbo"), "pbo")
	mustWrite(filepath.Join(dir, "meta.cpp"), "name")
	mustMkdir(filepath.Join(dir, "keys"))
	mustWrite(filepath.Join(dir, "keys", "author.bikey"), "key")
}

// installItem pre-populates the shared store with a valid install and
// marker for an item, as if a previous sync succeeded.
func (e *testEnv) installItem(t *testing.T, category string, itemID, epoch int64) string {
	t.Helper()
	dest := filepath.Join(e.layout.StoreDir(category), strconv.FormatInt(itemID, 10))
	writeModTree(dest)
	require.NoError(t, WriteMarker(markerPath(dest), &Marker{
		SteamID:     strconv.FormatInt(itemID, 10),
		Name:        "preinstalled",
		Timestamp:   epoch,
		SyncedAt:    "2026-01-01T00:00:00Z",
		LastChecked: "2026-01-01T00:00:00Z",
	}))
	return dest
}

func mustMkdir(p string) {
	if err := os.MkdirAll(p, 0755); err != nil {
		panic(err)
	}
}

func mustWrite(p, content string) {
	mustMkdir(filepath.Dir(p))
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		panic(err)
	}
}
