package content

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// keyExt is the signing-key file extension (case-insensitive on disk).
const keyExt = ".bikey"

// copyKeysFromMod installs every signing key found under modDir into
// the game keys directory as "<steamID>_<originalName>". Keys from a
// previous install of the same item are purged first so an update
// never leaves stale keys behind.
func (m *Manager) copyKeysFromMod(modDir, displayName, steamID string) {
	keysDir := m.layout.ArmaKeysDir
	if err := os.MkdirAll(keysDir, 0755); err != nil {
		m.log.Error().Err(err).Str("keysDir", keysDir).Msg("Failed to ensure keys dir")
		return
	}

	prefix := steamID + "_"
	if entries, err := os.ReadDir(keysDir); err == nil {
		for _, entry := range entries {
			name := entry.Name()
			if strings.HasPrefix(name, prefix) && strings.EqualFold(filepath.Ext(name), keyExt) {
				_ = os.Remove(filepath.Join(keysDir, name))
			}
		}
	}

	var found []string
	_ = filepath.WalkDir(modDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(d.Name()), keyExt) {
			found = append(found, p)
		}
		return nil
	})

	if len(found) == 0 {
		m.log.Warn().Str("name", displayName).Str("steamID", steamID).Msg("No signing keys found in mod")
		return
	}

	for _, keyFile := range found {
		target := filepath.Join(keysDir, prefix+filepath.Base(keyFile))
		info, err := os.Stat(keyFile)
		if err != nil {
			m.log.Error().Err(err).Str("key", keyFile).Msg("Failed to stat key")
			continue
		}
		if err := copyFile(keyFile, target, info.Mode()); err != nil {
			m.log.Error().Err(err).Str("key", keyFile).Msg("Failed to copy key")
		}
	}
}
