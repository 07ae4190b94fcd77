package steamcmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tacticalops/armalaunch/pkg/config"
	"github.com/tacticalops/armalaunch/pkg/errors"
)

func TestSettingsCredentialsFromEnvironmentPair(t *testing.T) {
	creds := SettingsCredentials{Settings: &config.Settings{
		SteamUser:     "envuser",
		SteamPassword: "envpass",
	}}
	user, pw, err := creds.Load()
	require.NoError(t, err)
	assert.Equal(t, "envuser", user)
	assert.Equal(t, "envpass", pw)
}

func TestSettingsCredentialsFromSidecarFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "steam_credentials.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"steam_user": "fileuser\n", "steam_password": " filepass "}`), 0600))

	creds := SettingsCredentials{Settings: &config.Settings{SteamCredentialsJSON: path}}
	user, pw, err := creds.Load()
	require.NoError(t, err)
	assert.Equal(t, "fileuser", user)
	assert.Equal(t, "filepass", pw)
}

func TestSettingsCredentialsAbsent(t *testing.T) {
	creds := SettingsCredentials{Settings: &config.Settings{
		SteamCredentialsJSON: filepath.Join(t.TempDir(), "missing.json"),
	}}
	_, _, err := creds.Load()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCredentialsAbsent))
}

func TestSettingsCredentialsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "steam_credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0600))

	creds := SettingsCredentials{Settings: &config.Settings{SteamCredentialsJSON: path}}
	_, _, err := creds.Load()
	assert.True(t, errors.IsErrorCode(err, errors.ErrCredentialsAbsent))
}

func TestSettingsCredentialsEnvPairWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "steam_credentials.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"steam_user": "fileuser", "steam_password": "filepass"}`), 0600))

	creds := SettingsCredentials{Settings: &config.Settings{
		SteamUser:            "envuser",
		SteamPassword:        "envpass",
		SteamCredentialsJSON: path,
	}}
	user, _, err := creds.Load()
	require.NoError(t, err)
	assert.Equal(t, "envuser", user)
}
