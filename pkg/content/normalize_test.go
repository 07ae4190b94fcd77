package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCaseLowersDirsAndKnownExtensions(t *testing.T) {
	env := newTestEnv(t)
	mod := filepath.Join(env.layout.Mods, "1")
	mustWrite(filepath.Join(mod, "Addons", "Weapons.PBO"), "x")
	mustWrite(filepath.Join(mod, "Addons", "Texture.PAA"), "x")
	mustWrite(filepath.Join(mod, "Scripts", "Init.SQF"), "x")
	mustWrite(filepath.Join(mod, "README.TXT"), "x")
	mustWrite(filepath.Join(mod, "meta.cpp"), "x")

	env.manager.normalizeCase(mod)

	assert.FileExists(t, filepath.Join(mod, "addons", "weapons.pbo"))
	assert.FileExists(t, filepath.Join(mod, "addons", "texture.paa"))
	assert.FileExists(t, filepath.Join(mod, "scripts", "init.sqf"))
	// unrelated extensions keep their casing
	assert.FileExists(t, filepath.Join(mod, "README.TXT"))
	assert.NoFileExists(t, filepath.Join(mod, "readme.txt"))
}

func TestNormalizeCaseDeepNesting(t *testing.T) {
	env := newTestEnv(t)
	mod := filepath.Join(env.layout.Mods, "1")
	mustWrite(filepath.Join(mod, "AddOns", "Sub", "Deep", "File.pbo"), "x")

	env.manager.normalizeCase(mod)
	assert.FileExists(t, filepath.Join(mod, "addons", "sub", "deep", "file.pbo"))
}

func TestNormalizeCaseCollisionSkipped(t *testing.T) {
	env := newTestEnv(t)
	mod := filepath.Join(env.layout.Mods, "1")
	mustWrite(filepath.Join(mod, "Mod.pbo"), "upper")
	mustWrite(filepath.Join(mod, "mod.pbo"), "lower")
	mustWrite(filepath.Join(mod, "Other.pbo"), "x")

	env.manager.normalizeCase(mod)

	// colliding rename skipped, both survivors intact
	data, err := os.ReadFile(filepath.Join(mod, "mod.pbo"))
	require.NoError(t, err)
	assert.Equal(t, "lower", string(data))
	assert.FileExists(t, filepath.Join(mod, "Mod.pbo"))
	// the rest of the tree is still normalized
	assert.FileExists(t, filepath.Join(mod, "other.pbo"))
}
