// Package content implements the reconciliation engine: it decides
// what is stale, drives SteamCMD downloads, maintains the shared
// content store with its sidecar markers, extracts signing keys, and
// projects the symlink layout the game process expects.
package content

import (
	"context"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/tacticalops/armalaunch/pkg/config"
	"github.com/tacticalops/armalaunch/pkg/logging"
	"github.com/tacticalops/armalaunch/pkg/paths"
	"github.com/tacticalops/armalaunch/pkg/steamapi"
	"github.com/tacticalops/armalaunch/pkg/steamcmd"
)

// InstallResult describes one successfully processed content item.
// The absence of a result for an optional item signals a skip, not a
// failure.
type InstallResult struct {
	Kind    string
	IDOrApp string
	Path    string
	Changed bool
}

// Manager is the content executor. A single instance is built per
// reconciliation pass; it holds no state beyond its collaborators.
type Manager struct {
	settings *config.Settings
	layout   paths.Layout
	tool     steamcmd.Client
	oracle   steamapi.Oracle
	log      zerolog.Logger

	// now is injectable for tests.
	now func() time.Time

	// normalizeExts are the file extensions that get lower-cased
	// during case normalization. The game's Linux build resolves
	// archive paths case-sensitively.
	normalizeExts []string

	// downloadBackoff is the outer retry layer above the tool
	// client's own: a download can fail for a different reason after
	// the tool already exited cleanly, e.g. a cache directory that
	// never materializes.
	downloadBackoff steamcmd.Backoff
}

// NewManager builds a content manager from its collaborators.
func NewManager(s *config.Settings, layout paths.Layout, tool steamcmd.Client, oracle steamapi.Oracle) *Manager {
	return &Manager{
		settings:        s,
		layout:          layout,
		tool:            tool,
		oracle:          oracle,
		log:             logging.GetLogger("content"),
		now:             time.Now,
		normalizeExts:   []string{".pbo", ".paa", ".sqf"},
		downloadBackoff: steamcmd.DefaultBackoff(),
	}
}

// markerPath returns the sidecar path for an installed item directory.
func markerPath(itemDir string) string {
	return filepath.Join(itemDir, MarkerFileName)
}

// isUpToDate combines the local marker, the remote oracle, and the
// minimal-content validation into a staleness verdict. It refreshes
// the marker's last_checked field whenever the marker is readable,
// regardless of the verdict.
//
// When the remote state is unknown the item is treated as stale: the
// engine prefers re-downloading over risking stale content when it
// cannot prove freshness.
func (m *Manager) isUpToDate(ctx context.Context, itemID int64, dest, marker, name string) (bool, int64, bool) {
	if !pathExists(dest) || !pathExists(marker) {
		return false, 0, false
	}

	meta, readable := ReadMarker(marker)
	var localEpoch int64
	if readable {
		localEpoch = meta.Timestamp
	}

	checked := formatMarkerTime(m.now())
	remoteEpoch, remoteKnown := m.oracle.TimeUpdated(ctx, itemID)

	if readable {
		meta.SteamID = strconv.FormatInt(itemID, 10)
		meta.Name = name
		if meta.SyncedAt == "" {
			meta.SyncedAt = checked
		}
		meta.LastChecked = checked
		if err := WriteMarker(marker, meta); err != nil {
			m.log.Debug().Err(err).Str("marker", marker).Msg("Failed to refresh marker last_checked")
		}
	}

	if !remoteKnown {
		return false, 0, false
	}
	if !VerifyMinimum(dest, name, nil) {
		return false, 0, false
	}
	return localEpoch >= remoteEpoch, remoteEpoch, true
}
