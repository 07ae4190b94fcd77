package content

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/tacticalops/armalaunch/pkg/config"
	"github.com/tacticalops/armalaunch/pkg/errors"
	"github.com/tacticalops/armalaunch/pkg/steamcmd"
)

// EnsureDlcs installs or updates every configured DLC into the shared
// dlcs store and links it into the game root under both the legacy
// mount name and the dlcs/ subtree. Failures are collected per DLC and
// raised once after the full pass.
func (m *Manager) EnsureDlcs(ctx context.Context, dlcs []config.DlcSpec, validate, dryRun bool) ([]InstallResult, error) {
	var results []InstallResult
	var failures []itemFailure

	for _, d := range dlcs {
		target := filepath.Join(m.layout.Dlcs, d.MountName)
		marker := markerPath(target)
		before := pathExists(marker)

		if dryRun {
			results = append(results, InstallResult{
				Kind: "dlc", IDOrApp: strconv.FormatInt(d.AppID, 10), Path: target, Changed: !before,
			})
			continue
		}

		if m.settings.SkipInstall {
			m.log.Info().Str("name", d.Name).Int64("appID", d.AppID).Msg("SKIP_INSTALL: not installing DLC")
		} else if err := m.installDlc(ctx, d, target, marker, validate); err != nil {
			m.log.Error().Err(err).Str("name", d.Name).Int64("appID", d.AppID).Msg("DLC install failed")
			failures = append(failures, itemFailure{
				Category: "dlc",
				Name:     d.Name,
				ID:       d.AppID,
				Reason:   err.Error(),
			})
			continue
		}

		results = append(results, InstallResult{
			Kind: "dlc", IDOrApp: strconv.FormatInt(d.AppID, 10), Path: target, Changed: !before,
		})
	}

	if len(failures) > 0 {
		var b strings.Builder
		b.WriteString("required DLC installs failed:")
		for _, f := range failures {
			fmt.Fprintf(&b, "\n- %s (%d) :: %s", f.Name, f.ID, f.Reason)
		}
		return results, errors.New(errors.ErrRequiredItems, b.String())
	}
	return results, nil
}

func (m *Manager) installDlc(ctx context.Context, d config.DlcSpec, target, marker string, validate bool) error {
	err := m.tool.EnsureApp(ctx, steamcmd.AppOptions{
		AppID:        d.AppID,
		InstallDir:   target,
		Validate:     validate,
		BetaBranch:   d.BetaBranch,
		BetaPassword: d.BetaPassword,
	})
	if err != nil {
		return err
	}

	now := formatMarkerTime(m.now())
	if err := WriteMarker(marker, &Marker{
		SteamID:     strconv.FormatInt(d.AppID, 10),
		Name:        d.Name,
		Timestamp:   m.now().Unix(),
		SyncedAt:    now,
		LastChecked: now,
	}); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to write DLC marker for %s", d.Name)
	}

	linkSrc := m.resolveDlcLinkSource(target, d.MountName)

	if err := os.MkdirAll(filepath.Join(m.layout.ArmaRoot, "dlcs"), 0755); err != nil {
		m.log.Debug().Err(err).Msg("Failed to create game-root dlcs dir")
	}
	if err := m.recreateLink(filepath.Join(m.layout.ArmaRoot, d.MountName), linkSrc, false); err != nil {
		return err
	}
	return m.recreateLink(filepath.Join(m.layout.ArmaRoot, "dlcs", d.MountName), linkSrc, false)
}

// resolveDlcLinkSource picks which directory under a DLC install tree
// actually holds the content. SteamCMD app installs land in one of
// several shapes:
//
//	<target>/addons
//	<target>/<mountName>/addons
//	<target>/<something>/addons
//
// The server expects <armaRoot>/<mountName> to be the folder that
// contains addons/, so the most plausible candidate is linked.
// Resolution is deterministic: root, literal mount name, single
// qualifying child, lexicographically first qualifying child (with a
// warning), and finally the install root itself.
func (m *Manager) resolveDlcLinkSource(target, mountName string) string {
	if dirExists(filepath.Join(target, "addons")) {
		return target
	}

	candidate := filepath.Join(target, mountName)
	if dirExists(filepath.Join(candidate, "addons")) {
		return candidate
	}

	entries, err := os.ReadDir(target)
	if err != nil {
		entries = nil
	}
	var hits []string
	for _, e := range entries {
		if e.IsDir() && dirExists(filepath.Join(target, e.Name(), "addons")) {
			hits = append(hits, filepath.Join(target, e.Name()))
		}
	}

	switch {
	case len(hits) == 1:
		return hits[0]
	case len(hits) > 1:
		sort.Strings(hits)
		m.log.Warn().Str("target", target).Str("picked", hits[0]).
			Msg("DLC layout ambiguous (multiple addons/ dirs), picking lexicographically first")
		return hits[0]
	default:
		m.log.Warn().Str("target", target).
			Msg("Could not find addons folder in DLC install, linking install root")
		return target
	}
}
