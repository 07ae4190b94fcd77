package steamcmd

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/tacticalops/armalaunch/pkg/config"
	"github.com/tacticalops/armalaunch/pkg/errors"
	"github.com/tacticalops/armalaunch/pkg/logging"
)

// CredentialProvider supplies Steam login material to the client.
// Implementations must never log credentials in cleartext.
type CredentialProvider interface {
	Load() (user, password string, err error)
}

// SettingsCredentials loads credentials from the environment pair in
// Settings, falling back to the steam_credentials.json sidecar.
type SettingsCredentials struct {
	Settings *config.Settings
}

type credentialsFile struct {
	SteamUser     string `json:"steam_user"`
	SteamPassword string `json:"steam_password"`
}

// Load implements CredentialProvider.
func (c SettingsCredentials) Load() (string, string, error) {
	if c.Settings.SteamUser != "" && c.Settings.SteamPassword != "" {
		return c.Settings.SteamUser, c.Settings.SteamPassword, nil
	}

	log := logging.GetLogger("steamcmd")
	path := c.Settings.SteamCredentialsJSON
	if data, err := os.ReadFile(path); err == nil {
		var f credentialsFile
		if err := json.Unmarshal(data, &f); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Failed to parse credentials file")
		} else {
			user := strings.TrimSpace(f.SteamUser)
			pw := strings.TrimSpace(f.SteamPassword)
			if user != "" && pw != "" {
				return user, pw, nil
			}
		}
	}

	return "", "", errors.New(errors.ErrCredentialsAbsent,
		"steam credentials missing: provide STEAM_USER/STEAM_PASSWORD or steam_credentials.json")
}

// maskArgs returns a copy of the command arguments with the login
// user and password replaced for logging.
func maskArgs(args []string, user, password string) []string {
	masked := make([]string, len(args))
	for i, a := range args {
		switch {
		case password != "" && a == password:
			masked[i] = "****"
		case user != "" && a == user:
			masked[i] = "****"
		default:
			masked[i] = a
		}
	}
	return masked
}
