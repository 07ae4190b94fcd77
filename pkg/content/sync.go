package content

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tacticalops/armalaunch/pkg/errors"
)

// syncFromCache replaces dest with the contents of cache. The copy is
// staged into a sibling temp directory first, then the old dest is
// removed and the staged tree renamed into place, so a crash never
// leaves a partially-written canonical directory.
func syncFromCache(cache, dest string) error {
	tmp := filepath.Join(filepath.Dir(dest), filepath.Base(dest)+".tmp")
	if pathExists(tmp) {
		if err := os.RemoveAll(tmp); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to clear stale staging dir %s", tmp)
		}
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create store dir for %s", dest)
	}
	if err := copyTree(cache, tmp); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to stage %s", cache)
	}
	if pathExists(dest) {
		if err := os.RemoveAll(dest); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to remove old install %s", dest)
		}
	}
	if err := os.Rename(tmp, dest); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to activate %s", dest)
	}
	return nil
}

// copyTree copies src into dst recursively, preserving file modes.
// Symlinks inside the cache are copied as links.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}

		switch {
		case d.IsDir():
			return os.MkdirAll(target, 0755)
		case info.Mode()&os.ModeSymlink != 0:
			linkTarget, err := os.Readlink(p)
			if err != nil {
				return err
			}
			return os.Symlink(linkTarget, target)
		default:
			return copyFile(p, target, info.Mode())
		}
	})
}

func copyFile(src, dst string, mode fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
