package config

import (
	"fmt"
	"path/filepath"
	"strings"

	ktoml "github.com/knadh/koanf/parsers/toml"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/tacticalops/armalaunch/pkg/errors"
	"github.com/tacticalops/armalaunch/pkg/logging"
)

// configDefaults are the baseline values merged under every instance
// config file.
var configDefaults = map[string]interface{}{
	"server.hostname":          "Arma 3 Server",
	"server.max_players":       40,
	"server.port":              2302,
	"server.profiles_subdir":   "profiles",
	"server.missions_dir":      "mpmissions",
	"server.battleye":          true,
	"server.verify_signatures": 2,
	"server.motd_interval":     5,
	"runtime.cpu_count":        4,
	"ocap.link_to":             "servermods",
	"ocap.link_name":           "ocap",
}

// LoadConfig reads the resolved instance configuration from a TOML or
// YAML file, layered over built-in defaults. Workshop items and custom
// mods default to required unless the file says otherwise.
func LoadConfig(path string) (*ResolvedConfig, error) {
	log := logging.GetLogger("config")

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(configDefaults, "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load config defaults")
	}

	parser, err := parserFor(path)
	if err != nil {
		return nil, err
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", path)
	}

	var cfg ResolvedConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse config from %s", path)
	}

	applyRequiredDefaults(k, &cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	log.Debug().
		Str("path", path).
		Int("dlcs", len(cfg.Dlcs)).
		Int("mods", len(cfg.Workshop.Mods)).
		Int("maps", len(cfg.Workshop.Maps)).
		Int("servermods", len(cfg.Workshop.ServerMods)).
		Msg("Loaded instance config")
	return &cfg, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return ktoml.Parser(), nil
	case ".yaml", ".yml":
		return kyaml.Parser(), nil
	default:
		return nil, errors.Newf(errors.ErrConfigLoad, "unsupported config format: %s", path)
	}
}

// applyRequiredDefaults flips Required to true for every workshop item
// and custom mod whose file entry did not spell out a value. The zero
// value of bool would otherwise silently demote everything to optional.
func applyRequiredDefaults(k *koanf.Koanf, cfg *ResolvedConfig) {
	categories := map[string][]WorkshopItem{
		"workshop.mods":       cfg.Workshop.Mods,
		"workshop.maps":       cfg.Workshop.Maps,
		"workshop.servermods": cfg.Workshop.ServerMods,
		"workshop.clientmods": cfg.Workshop.ClientMods,
	}
	for prefix, items := range categories {
		for i := range items {
			if !k.Exists(fmt.Sprintf("%s.%d.required", prefix, i)) {
				items[i].Required = true
			}
		}
	}

	custom := map[string][]CustomModEntry{
		"custom_mods.mods":       cfg.CustomMods.Mods,
		"custom_mods.servermods": cfg.CustomMods.ServerMods,
	}
	for prefix, items := range custom {
		for i := range items {
			if !k.Exists(fmt.Sprintf("%s.%d.required", prefix, i)) {
				items[i].Required = true
			}
		}
	}
}

func validate(cfg *ResolvedConfig) error {
	for _, pair := range cfg.AllWorkshopItems() {
		if pair.Item.ID <= 0 {
			return errors.Newf(errors.ErrConfigValid,
				"workshop item in %s has invalid id %d", pair.Category, pair.Item.ID)
		}
	}
	for _, d := range cfg.Dlcs {
		if d.AppID <= 0 || d.MountName == "" {
			return errors.Newf(errors.ErrConfigValid,
				"dlc %q needs both app_id and mount_name", d.Name)
		}
	}
	return nil
}
