package content

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/tacticalops/armalaunch/pkg/errors"
)

// EnsureBonusFolders keeps selected built-in content folders (aow,
// argo, curator and friends) in the shared dlcs store and linked into
// the game root. A folder that still exists as a real directory in the
// game root is migrated into the store first — unless the store copy
// already has content, in which case the game root is left alone
// rather than clobbered.
func (m *Manager) EnsureBonusFolders(names []string, dryRun bool) error {
	for _, name := range names {
		token := strings.ToLower(strings.TrimSpace(name))
		if token == "" {
			continue
		}
		if dryRun {
			continue
		}

		store := filepath.Join(m.layout.Dlcs, token)
		linkDst := filepath.Join(m.layout.ArmaRoot, token)

		if err := os.MkdirAll(filepath.Dir(store), 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "failed to create dlcs store")
		}

		if info, err := os.Lstat(linkDst); err == nil && info.IsDir() && info.Mode()&os.ModeSymlink == 0 {
			if dirHasContent(store) {
				m.log.Warn().Str("folder", token).Str("gameRoot", linkDst).
					Msg("Bonus folder exists in game root and store already non-empty; leaving game root as-is")
				continue
			}
			if pathExists(store) {
				if err := os.RemoveAll(store); err != nil {
					m.log.Error().Err(err).Str("folder", token).Msg("Failed to clear empty store before migration")
					continue
				}
			}
			if err := os.Rename(linkDst, store); err != nil {
				m.log.Error().Err(err).Str("folder", token).Msg("Failed to migrate bonus folder into store")
				continue
			}
			m.log.Info().Str("folder", token).Str("from", linkDst).Str("to", store).
				Msg("Migrated bonus folder into shared store")
		}

		if err := os.MkdirAll(store, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "failed to create store for bonus folder %s", token)
		}

		if err := m.recreateLink(linkDst, store, false); err != nil {
			return err
		}
		m.log.Info().Str("folder", token).Str("link", linkDst).Str("store", store).Msg("Linked bonus folder")
	}
	return nil
}

func dirHasContent(p string) bool {
	entries, err := os.ReadDir(p)
	return err == nil && len(entries) > 0
}
