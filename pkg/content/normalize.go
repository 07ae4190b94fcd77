package content

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// normalizeCase walks a mod tree bottom-up, lower-casing directory
// names and the names of files whose extension is in exts. The game's
// Linux build resolves paths case-sensitively while mod archives
// reference them in arbitrary casing.
//
// A rename that would collide with an existing differently-cased entry
// is logged and skipped; the rest of the tree is still normalized.
func (m *Manager) normalizeCase(modPath string) {
	lowerExts := make(map[string]bool, len(m.normalizeExts))
	for _, e := range m.normalizeExts {
		lowerExts[strings.ToLower(e)] = true
	}

	dirs := collectDirsBottomUp(modPath)
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			name := entry.Name()
			lower := strings.ToLower(name)
			if name == lower {
				continue
			}
			if !entry.IsDir() && !lowerExts[strings.ToLower(filepath.Ext(name))] {
				continue
			}
			src := filepath.Join(dir, name)
			dst := filepath.Join(dir, lower)
			if pathExists(dst) {
				m.log.Error().Str("src", src).Str("dst", dst).Msg("Normalization collision: target exists")
				continue
			}
			if err := os.Rename(src, dst); err != nil {
				m.log.Error().Err(err).Str("src", src).Str("dst", dst).Msg("Failed to rename during normalization")
			}
		}
	}
}

// collectDirsBottomUp lists every directory under root, deepest first,
// so that child entries are renamed before their parent directory is.
func collectDirsBottomUp(root string) []string {
	var dirs []string
	_ = filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			dirs = append(dirs, p)
		}
		return nil
	})
	sort.Slice(dirs, func(i, j int) bool {
		return strings.Count(dirs[i], string(os.PathSeparator)) > strings.Count(dirs[j], string(os.PathSeparator))
	})
	return dirs
}
