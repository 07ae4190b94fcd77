// Package paths centralizes the on-disk layout of the launcher: the
// shared content store, the per-instance tree, and the game root
// locations the server process reads from.
package paths

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/tacticalops/armalaunch/pkg/config"
	"github.com/tacticalops/armalaunch/pkg/errors"
)

// Subdirectory names under the shared store and the instance root.
// These define internal structure and are not user-configurable.
const (
	DlcsDir       = "dlcs"
	MapsDir       = "maps"
	ModsDir       = "mods"
	OcapDir       = "ocap"
	ServerModsDir = "servermods"
	UserconfigDir = "userconfig"
	ConfigDir     = "config"
	MpMissionsDir = "mpmissions"
	LogsDir       = "logs"
	KeysDir       = "keys"
)

// Layout resolves every directory the reconciler touches. The shared
// store (under ArmaCommon) owns one physical copy of each content
// item; instance directories hold only symlinks into it.
type Layout struct {
	// shared store
	Dlcs       string
	Maps       string
	Mods       string
	ServerMods string
	Ocap       string

	// per-instance tree
	InstMods       string
	InstServerMods string
	InstUserconfig string
	InstConfig     string
	InstMpMissions string
	InstLogs       string

	// game root
	ArmaRoot       string
	ArmaCfgDir     string
	ArmaKeysDir    string
	ArmaCustomMods string

	// instance-mounted custom mods
	InstCustomMods string
}

// NewLayout derives the full layout from settings.
func NewLayout(s *config.Settings) Layout {
	common := s.ArmaCommon
	inst := s.ArmaInstance
	return Layout{
		Dlcs:       filepath.Join(common, DlcsDir),
		Maps:       filepath.Join(common, MapsDir),
		Mods:       filepath.Join(common, ModsDir),
		ServerMods: filepath.Join(common, ServerModsDir),
		Ocap:       filepath.Join(common, OcapDir),

		InstMods:       filepath.Join(inst, ModsDir),
		InstServerMods: filepath.Join(inst, ServerModsDir),
		InstUserconfig: filepath.Join(inst, UserconfigDir),
		InstConfig:     filepath.Join(inst, ConfigDir),
		InstMpMissions: filepath.Join(inst, MpMissionsDir),
		InstLogs:       filepath.Join(inst, LogsDir),

		ArmaRoot:       s.ArmaRoot,
		ArmaCfgDir:     filepath.Join(s.ArmaRoot, ConfigDir),
		ArmaKeysDir:    filepath.Join(s.ArmaRoot, KeysDir),
		ArmaCustomMods: filepath.Join(s.ArmaRoot, "custom-mods"),

		InstCustomMods: s.ArmaCustomMods,
	}
}

// EnsureDirs creates every managed directory that does not exist yet.
func (l Layout) EnsureDirs() error {
	for _, p := range []string{
		l.Dlcs, l.Maps, l.Mods, l.ServerMods, l.Ocap,
		l.InstMods, l.InstServerMods, l.InstUserconfig,
		l.InstConfig, l.InstMpMissions, l.InstLogs,
		l.ArmaCfgDir, l.ArmaKeysDir,
	} {
		if err := os.MkdirAll(p, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", p)
		}
	}
	return nil
}

// StoreDir returns the shared-store directory for a workshop category.
// Client mods share the mods store: the server never loads them, they
// exist for signature distribution only.
func (l Layout) StoreDir(category string) string {
	switch category {
	case config.CategoryMaps:
		return l.Maps
	case config.CategoryServerMods:
		return l.ServerMods
	default:
		return l.Mods
	}
}

// InstanceDir returns the instance directory a category links into.
// Maps are mods in Arma terms, so they land in the mods folder.
func (l Layout) InstanceDir(category string) string {
	if category == config.CategoryServerMods {
		return l.InstServerMods
	}
	return l.InstMods
}

// WorkshopCacheDir returns where SteamCMD materializes a downloaded
// workshop item before the launcher syncs it into the shared store.
func WorkshopCacheDir(s *config.Settings, workshopID int64) string {
	return filepath.Join(
		s.SteamLibraryRoot, "steamapps", "workshop", "content",
		strconv.FormatInt(s.ArmaWorkshopGameID, 10),
		strconv.FormatInt(workshopID, 10),
	)
}
