package content

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tacticalops/armalaunch/pkg/config"
	"github.com/tacticalops/armalaunch/pkg/errors"
)

// recreateLink replaces whatever exists at linkPath with a fresh
// symlink to target. Real directories are removed recursively. The
// sequence is not transactional: a crash can leave linkPath absent,
// which the next run repairs because projection always starts from
// scratch.
func (m *Manager) recreateLink(linkPath, target string, dryRun bool) error {
	if dryRun {
		return nil
	}
	if info, err := os.Lstat(linkPath); err == nil {
		if info.IsDir() && info.Mode()&os.ModeSymlink == 0 {
			if err := os.RemoveAll(linkPath); err != nil {
				return errors.Wrapf(err, errors.ErrFileAccess, "failed to remove %s", linkPath)
			}
		} else {
			if err := os.Remove(linkPath); err != nil && !os.IsNotExist(err) {
				return errors.Wrapf(err, errors.ErrFileAccess, "failed to remove %s", linkPath)
			}
		}
	}
	if err := os.Symlink(target, linkPath); err != nil {
		return errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to link %s -> %s", linkPath, target)
	}
	return nil
}

// resolveCustomModDir maps a configured custom-mod name to its folder
// under the instance custom-mods mount. Both "myMod" and "@myMod"
// spellings are accepted on disk.
func (m *Manager) resolveCustomModDir(name string) string {
	raw := strings.TrimSpace(name)
	if raw == "" {
		return m.layout.InstCustomMods
	}
	exact := filepath.Join(m.layout.InstCustomMods, raw)
	if pathExists(exact) {
		return exact
	}
	if !strings.HasPrefix(raw, "@") {
		if alt := filepath.Join(m.layout.InstCustomMods, "@"+raw); pathExists(alt) {
			return alt
		}
	} else {
		if alt := filepath.Join(m.layout.InstCustomMods, strings.TrimPrefix(raw, "@")); pathExists(alt) {
			return alt
		}
	}
	return exact
}

// modToken strips the @ prefix from a configured custom-mod name; the
// game-root alias always gets exactly one @.
func modToken(name string) string {
	return strings.TrimPrefix(strings.TrimSpace(name), "@")
}

// LinkInstanceContent rebuilds the symlink projection: instance
// category folders keyed by raw id, and game-root @token aliases the
// launched process references. Safe to re-run at any time.
func (m *Manager) LinkInstanceContent(cfg *config.ResolvedConfig, dryRun bool) error {
	m.log.Info().
		Str("instMods", m.layout.InstMods).
		Str("instServerMods", m.layout.InstServerMods).
		Str("instMpMissions", m.layout.InstMpMissions).
		Str("instConfig", m.layout.InstConfig).
		Msg("Projecting instance layout")

	if samePath(m.layout.InstMods, m.layout.InstMpMissions) {
		return errors.Newf(errors.ErrLayoutCollision,
			"layout invalid: instance mods and mpmissions resolve to the same path: %s == %s; this would link workshop mods into mpmissions",
			m.layout.InstMods, m.layout.InstMpMissions)
	}

	if err := m.resetInstanceDirs(dryRun); err != nil {
		return err
	}

	if err := m.linkWorkshop(cfg, dryRun); err != nil {
		return err
	}
	if err := m.linkOcap(cfg, dryRun); err != nil {
		return err
	}
	if err := m.linkCustomMods(cfg, dryRun); err != nil {
		return err
	}
	if err := m.linkMissionsAndConfig(cfg, dryRun); err != nil {
		return err
	}

	if dryRun {
		m.log.Info().Msg("Instance symlinks prepared (dry-run)")
	} else {
		m.log.Info().Msg("Instance symlinks prepared")
	}
	return nil
}

// samePath compares two paths after resolving symlinks; unresolvable
// paths fall back to lexical cleaning.
func samePath(a, b string) bool {
	ra, errA := filepath.EvalSymlinks(a)
	rb, errB := filepath.EvalSymlinks(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return ra == rb
}

// resetInstanceDirs clears the instance category folders so removed
// items do not leave dangling links behind.
func (m *Manager) resetInstanceDirs(dryRun bool) error {
	if dryRun {
		return nil
	}
	for _, dir := range []string{m.layout.InstMods, m.layout.InstServerMods} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", dir)
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", dir)
		}
		for _, entry := range entries {
			child := filepath.Join(dir, entry.Name())
			info, err := os.Lstat(child)
			if err != nil {
				continue
			}
			if info.IsDir() && info.Mode()&os.ModeSymlink == 0 {
				if err := os.RemoveAll(child); err != nil {
					return errors.Wrapf(err, errors.ErrFileAccess, "failed to clear %s", child)
				}
			} else if err := os.Remove(child); err != nil && !os.IsNotExist(err) {
				return errors.Wrapf(err, errors.ErrFileAccess, "failed to clear %s", child)
			}
		}
	}
	return nil
}

func (m *Manager) linkIntoGameRoot(linkName, target string, dryRun bool) error {
	if !dryRun {
		if err := os.MkdirAll(m.layout.ArmaRoot, 0755); err != nil {
			m.log.Debug().Err(err).Msg("Failed to ensure game root")
		}
	}
	return m.recreateLink(filepath.Join(m.layout.ArmaRoot, linkName), target, dryRun)
}

// linkWorkshop links installed workshop items into the instance
// category folders and the game root. Client mods are deliberately not
// linked: the server never loads them, they exist in the store for
// signature distribution only.
func (m *Manager) linkWorkshop(cfg *config.ResolvedConfig, dryRun bool) error {
	link := func(items []config.WorkshopItem, store, instDir string) error {
		for _, it := range items {
			id := strconv.FormatInt(it.ID, 10)
			src := filepath.Join(store, id)
			if !pathExists(src) {
				continue
			}
			if err := m.recreateLink(filepath.Join(instDir, id), src, dryRun); err != nil {
				return err
			}
			if err := m.linkIntoGameRoot("@"+id, src, dryRun); err != nil {
				return err
			}
		}
		return nil
	}

	if err := link(cfg.Workshop.Mods, m.layout.Mods, m.layout.InstMods); err != nil {
		return err
	}
	if err := link(cfg.Workshop.Maps, m.layout.Maps, m.layout.InstMods); err != nil {
		return err
	}
	return link(cfg.Workshop.ServerMods, m.layout.ServerMods, m.layout.InstServerMods)
}

func (m *Manager) linkOcap(cfg *config.ResolvedConfig, dryRun bool) error {
	oc := cfg.Ocap
	if !oc.Enabled {
		return nil
	}
	if oc.LinkTo != config.CategoryMods && oc.LinkTo != config.CategoryServerMods {
		return errors.Newf(errors.ErrConfigValid,
			"ocap.link_to must be %q or %q, got %q", config.CategoryMods, config.CategoryServerMods, oc.LinkTo)
	}

	src := m.layout.Ocap
	if oc.SourceSubdir != "" {
		src = filepath.Join(m.layout.Ocap, oc.SourceSubdir)
	}
	dstBase := m.layout.InstMods
	if oc.LinkTo == config.CategoryServerMods {
		dstBase = m.layout.InstServerMods
	}

	if err := m.recreateLink(filepath.Join(dstBase, oc.LinkName), src, dryRun); err != nil {
		return err
	}
	rootAlias := oc.LinkName
	if !strings.HasPrefix(rootAlias, "@") {
		rootAlias = "@" + rootAlias
	}
	return m.linkIntoGameRoot(rootAlias, src, dryRun)
}

func (m *Manager) linkCustomMods(cfg *config.ResolvedConfig, dryRun bool) error {
	// Expose the whole custom-mods mount in the game root unless a
	// real directory already sits there.
	if info, err := os.Lstat(m.layout.ArmaCustomMods); err != nil || !info.IsDir() || info.Mode()&os.ModeSymlink != 0 {
		if err := m.recreateLink(m.layout.ArmaCustomMods, m.layout.InstCustomMods, dryRun); err != nil {
			return err
		}
	}

	linkOne := func(entry config.CustomModEntry, instDir string) error {
		token := modToken(entry.Name)
		if token == "" {
			return nil
		}
		src := m.resolveCustomModDir(entry.Name)
		if !pathExists(src) {
			if entry.Required {
				m.log.Warn().Str("name", entry.Name).Str("expected", src).
					Msg("Required custom mod missing")
			}
			return nil
		}
		if err := m.recreateLink(filepath.Join(instDir, token), src, dryRun); err != nil {
			return err
		}
		return m.linkIntoGameRoot("@"+token, src, dryRun)
	}

	for _, entry := range cfg.CustomMods.Mods {
		if err := linkOne(entry, m.layout.InstMods); err != nil {
			return err
		}
	}
	for _, entry := range cfg.CustomMods.ServerMods {
		if err := linkOne(entry, m.layout.InstServerMods); err != nil {
			return err
		}
	}
	return nil
}

// linkMissionsAndConfig points the game root at the instance missions
// folder and exposes the generated config files. The game-root config
// directory itself is never replaced because game files may live there;
// only the generated files are linked.
func (m *Manager) linkMissionsAndConfig(cfg *config.ResolvedConfig, dryRun bool) error {
	if !dryRun {
		if err := os.MkdirAll(m.layout.InstMpMissions, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", m.layout.InstMpMissions)
		}
	}
	missionsDst := filepath.Join(m.layout.ArmaRoot, cfg.Server.MissionsDir)
	if err := m.recreateLink(missionsDst, m.layout.InstMpMissions, dryRun); err != nil {
		return err
	}

	if !dryRun {
		for _, dir := range []string{m.layout.InstConfig, m.layout.ArmaCfgDir} {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", dir)
			}
		}
	}
	for _, name := range []string{"generated_a3server.cfg", "generated_hc_a3client.cfg"} {
		if err := m.recreateLink(
			filepath.Join(m.layout.ArmaCfgDir, name),
			filepath.Join(m.layout.InstConfig, name),
			dryRun,
		); err != nil {
			return err
		}
	}
	return nil
}
