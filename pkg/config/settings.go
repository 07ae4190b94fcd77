package config

import (
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/tacticalops/armalaunch/pkg/errors"
)

// Settings holds the process-level environment configuration: where the
// game lives, where shared content is stored, and how SteamCMD is
// reached. All fields come from environment variables with sensible
// container defaults.
type Settings struct {
	ArmaRoot       string `koanf:"arma_root"`
	ArmaCommon     string `koanf:"arma_common"`
	ArmaInstance   string `koanf:"arma_instance"`
	ArmaCustomMods string `koanf:"arma_custom_mods"`

	SteamCmdSh       string `koanf:"steamcmd_sh"`
	SteamLibraryRoot string `koanf:"steam_library_root"`
	TmpDir           string `koanf:"tmp_dir"`

	ArmaBinary string `koanf:"arma_binary"`

	SteamUser            string `koanf:"steam_user"`
	SteamPassword        string `koanf:"steam_password"`
	SteamCredentialsJSON string `koanf:"steam_credentials_json"`

	SkipInstall bool `koanf:"skip_install"`

	ArmaAppID         int64 `koanf:"arma_app_id"`
	ArmaWorkshopGameID int64 `koanf:"arma_workshop_game_id"`
}

// settingsDefaults mirror the paths baked into the server container
// image. Every one can be overridden by its upper-cased env var.
var settingsDefaults = map[string]interface{}{
	"arma_root":              "/arma3",
	"arma_common":            "/var/run/share/arma3/server-common",
	"arma_instance":          "/var/run/share/arma3/this-server",
	"arma_custom_mods":       "/var/run/share/arma3/this-server/custom-mods",
	"steamcmd_sh":            "/steamcmd/steamcmd.sh",
	"steam_library_root":     "/root/Steam",
	"tmp_dir":                "/tmp",
	"arma_binary":            "/arma3/arma3server_x64",
	"steam_user":             "",
	"steam_password":         "",
	"steam_credentials_json": "/var/run/share/steam_credentials.json",
	"skip_install":           false,
	"arma_app_id":            int64(233780),
	"arma_workshop_game_id":  int64(107410),
}

// settingsEnvKeys maps environment variable names to settings keys.
// Variables not listed here are ignored.
var settingsEnvKeys = map[string]string{
	"ARMA_ROOT":              "arma_root",
	"ARMA_COMMON":            "arma_common",
	"ARMA_INSTANCE":          "arma_instance",
	"ARMA_CUSTOM_MODS":       "arma_custom_mods",
	"STEAMCMD_SH":            "steamcmd_sh",
	"STEAM_LIBRARY_ROOT":     "steam_library_root",
	"STEAM_USER":             "steam_user",
	"STEAM_PASSWORD":         "steam_password",
	"STEAM_CREDENTIALS_JSON": "steam_credentials_json",
	"TMP_DIR":                "tmp_dir",
	"ARMA_BINARY":            "arma_binary",
	"SKIP_INSTALL":           "skip_install",
}

// LoadSettings loads process settings from defaults layered with the
// environment.
func LoadSettings() (*Settings, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(settingsDefaults, "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load settings defaults")
	}

	if err := k.Load(env.Provider("", ".", func(s string) string {
		return settingsEnvKeys[s]
	}), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load settings from environment")
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal settings")
	}
	return &s, nil
}
