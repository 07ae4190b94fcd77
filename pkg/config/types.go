package config

import "strconv"

// WorkshopItem is a single Steam Workshop subscription. The ID is
// canonical; Name is only used for log readability. Optional items
// (Required=false) are skipped with a warning when unavailable.
type WorkshopItem struct {
	ID       int64  `koanf:"id"`
	Name     string `koanf:"name"`
	Required bool   `koanf:"required"`
}

// DisplayName returns the item name, or the ID when unnamed.
func (w WorkshopItem) DisplayName() string {
	if w.Name != "" {
		return w.Name
	}
	return strconv.FormatInt(w.ID, 10)
}

// WorkshopConfig groups workshop items by the category that decides
// where they are stored and linked.
type WorkshopConfig struct {
	Mods       []WorkshopItem `koanf:"mods"`
	Maps       []WorkshopItem `koanf:"maps"`
	ServerMods []WorkshopItem `koanf:"servermods"`
	ClientMods []WorkshopItem `koanf:"clientmods"`
}

// DlcSpec describes a Creator DLC installed via SteamCMD app_update.
type DlcSpec struct {
	Name         string `koanf:"name"`
	AppID        int64  `koanf:"app_id"`
	MountName    string `koanf:"mount_name"`
	BetaBranch   string `koanf:"beta_branch"`
	BetaPassword string `koanf:"beta_password"`
}

// SteamConfig carries per-run SteamCMD behavior toggles.
type SteamConfig struct {
	ForceValidate bool `koanf:"force_validate"`
}

// OcapConfig describes the custom-built OCAP mod placed manually into
// the shared store. It is never downloaded, only linked.
//
// If SourceSubdir is empty the shared ocap folder itself is the link
// source, otherwise <common>/ocap/<SourceSubdir>.
type OcapConfig struct {
	Enabled      bool   `koanf:"enabled"`
	LinkTo       string `koanf:"link_to"`
	LinkName     string `koanf:"link_name"`
	SourceSubdir string `koanf:"source_subdir"`
}

// CustomModEntry is a non-Steam mod folder mounted under the instance
// custom-mods directory.
type CustomModEntry struct {
	Name     string `koanf:"name"`
	Required bool   `koanf:"required"`
}

// CustomModsConfig lists custom mod folders by link target category.
type CustomModsConfig struct {
	Mods       []CustomModEntry `koanf:"mods"`
	ServerMods []CustomModEntry `koanf:"servermods"`
}

// ServerConfig is the game-server part of the resolved configuration,
// consumed by the config generator and the orchestrator.
type ServerConfig struct {
	Hostname         string   `koanf:"hostname"`
	Password         string   `koanf:"password"`
	PasswordAdmin    string   `koanf:"password_admin"`
	MaxPlayers       int      `koanf:"max_players"`
	Port             int      `koanf:"port"`
	ProfilesSubdir   string   `koanf:"profiles_subdir"`
	MissionsDir      string   `koanf:"missions_dir"`
	BattlEye         bool     `koanf:"battleye"`
	VerifySignatures int      `koanf:"verify_signatures"`
	Motd             []string `koanf:"motd"`
	MotdInterval     int      `koanf:"motd_interval"`
}

// RuntimeConfig carries process-launch tuning.
type RuntimeConfig struct {
	CPUCount  int      `koanf:"cpu_count"`
	ExtraArgs []string `koanf:"extra_args"`
}

// HeadlessClientsConfig controls co-located headless clients.
type HeadlessClientsConfig struct {
	Enabled   bool     `koanf:"enabled"`
	Count     int      `koanf:"count"`
	Password  string   `koanf:"password"`
	ExtraArgs []string `koanf:"extra_args"`
}

// ResolvedConfig is the fully merged configuration handed to the
// planner, the content manager, and the orchestrator. Construction
// happens once per reconciliation pass; the engine treats it as
// immutable.
type ResolvedConfig struct {
	ConfigName string `koanf:"config_name"`

	Server  ServerConfig  `koanf:"server"`
	Runtime RuntimeConfig `koanf:"runtime"`

	Steam           SteamConfig           `koanf:"steam"`
	Dlcs            []DlcSpec             `koanf:"dlcs"`
	Workshop        WorkshopConfig        `koanf:"workshop"`
	HeadlessClients HeadlessClientsConfig `koanf:"headless_clients"`
	Ocap            OcapConfig            `koanf:"ocap"`
	CustomMods      CustomModsConfig      `koanf:"custom_mods"`
	BonusFolders    []string              `koanf:"bonus_folders"`
}

// AllWorkshopItems returns (category, item) pairs in the deterministic
// order the reconciler processes them: mods, clientmods, maps,
// servermods.
func (c *ResolvedConfig) AllWorkshopItems() []CategorizedItem {
	var out []CategorizedItem
	for _, it := range c.Workshop.Mods {
		out = append(out, CategorizedItem{Category: CategoryMods, Item: it})
	}
	for _, it := range c.Workshop.ClientMods {
		out = append(out, CategorizedItem{Category: CategoryClientMods, Item: it})
	}
	for _, it := range c.Workshop.Maps {
		out = append(out, CategorizedItem{Category: CategoryMaps, Item: it})
	}
	for _, it := range c.Workshop.ServerMods {
		out = append(out, CategorizedItem{Category: CategoryServerMods, Item: it})
	}
	return out
}

// Workshop categories. Client mods live in the shared mods store: the
// server does not load them, they only exist so connecting players can
// fetch signatures.
const (
	CategoryMods       = "mods"
	CategoryMaps       = "maps"
	CategoryServerMods = "servermods"
	CategoryClientMods = "clientmods"
)

// CategorizedItem pairs a workshop item with its category.
type CategorizedItem struct {
	Category string
	Item     WorkshopItem
}
