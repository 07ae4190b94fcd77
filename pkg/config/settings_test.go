package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsDefaults(t *testing.T) {
	s, err := LoadSettings()
	require.NoError(t, err)

	assert.Equal(t, "/arma3", s.ArmaRoot)
	assert.Equal(t, "/steamcmd/steamcmd.sh", s.SteamCmdSh)
	assert.Equal(t, int64(233780), s.ArmaAppID)
	assert.Equal(t, int64(107410), s.ArmaWorkshopGameID)
	assert.False(t, s.SkipInstall)
}

func TestLoadSettingsEnvOverrides(t *testing.T) {
	t.Setenv("ARMA_ROOT", "/srv/arma")
	t.Setenv("STEAM_USER", "operator")
	t.Setenv("SKIP_INSTALL", "true")

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, "/srv/arma", s.ArmaRoot)
	assert.Equal(t, "operator", s.SteamUser)
	assert.True(t, s.SkipInstall)
}

func TestLoadSettingsIgnoresUnknownEnv(t *testing.T) {
	t.Setenv("ARMA_UNRELATED", "noise")

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, "/arma3", s.ArmaRoot)
}
