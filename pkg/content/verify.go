package content

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tacticalops/armalaunch/pkg/logging"
)

// Default minimal-content requirements for an Arma mod:
// either an addons/ folder or at least one .pbo archive anywhere in
// the tree, plus a meta.cpp descriptor (case-insensitive) anywhere.
var defaultRequirements = []string{"addons", "meta.cpp"}

// VerifyMinimum checks that an installed mod directory holds the
// minimum structure the game can load. Additional requirements beyond
// the defaults are plain path-existence checks relative to the mod
// root. The result is a boolean only; missing pieces are logged at
// debug level.
func VerifyMinimum(path, name string, required []string) bool {
	log := logging.GetLogger("content")

	if required == nil {
		required = defaultRequirements
	}
	if _, err := os.Stat(path); err != nil {
		return false
	}

	var missing []string

	for _, req := range required {
		switch req {
		case "addons":
			if !dirExists(filepath.Join(path, "addons")) && !treeHasSuffix(path, ".pbo") {
				missing = append(missing, "addons or .pbo")
			}
		case "meta.cpp":
			if !pathExists(filepath.Join(path, "meta.cpp")) && !treeHasFileNamed(path, "meta.cpp") {
				missing = append(missing, "meta.cpp")
			}
		default:
			if !pathExists(filepath.Join(path, strings.TrimSuffix(req, "/"))) {
				missing = append(missing, req)
			}
		}
	}

	if len(missing) > 0 {
		log.Debug().
			Str("name", name).
			Str("path", path).
			Strs("missing", missing).
			Msg("Minimal-content validation failed")
		return false
	}
	return true
}

func pathExists(p string) bool {
	_, err := os.Lstat(p)
	return err == nil
}

func dirExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

// treeHasSuffix reports whether any file under root has the given
// extension (case-insensitive).
func treeHasSuffix(root, ext string) bool {
	found := false
	_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(d.Name()), ext) {
			found = true
			return filepath.SkipAll
		}
		return nil
	})
	return found
}

// treeHasFileNamed reports whether any file under root matches the
// given name case-insensitively.
func treeHasFileNamed(root, name string) bool {
	found := false
	_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && strings.EqualFold(d.Name(), name) {
			found = true
			return filepath.SkipAll
		}
		return nil
	})
	return found
}
