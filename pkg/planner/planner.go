// Package planner projects the resolved configuration and the current
// filesystem state into an ordered list of intended actions. Planning
// is pure: it may stat paths but never creates, deletes, or modifies
// anything, so it is safe to call at any time, including before any
// content exists.
package planner

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tacticalops/armalaunch/pkg/config"
	"github.com/tacticalops/armalaunch/pkg/content"
	"github.com/tacticalops/armalaunch/pkg/paths"
)

// Severity grades a planned action for display.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// Action kinds emitted by the planner.
const (
	KindInstallDlc          = "install_dlc"
	KindDownloadWorkshop    = "download_workshop"
	KindLink                = "link"
	KindLinkOcap            = "link_ocap"
	KindLinkCustomMod       = "link_custom_mod"
	KindLinkCustomServermod = "link_custom_servermod"
	KindOcapConfigError     = "ocap_config_error"
)

// Action is one intended step. Paths carries named source/destination
// locations for display; WillChange reports whether executing the plan
// would mutate the filesystem.
type Action struct {
	Kind       string            `json:"action" yaml:"action"`
	Target     string            `json:"target" yaml:"target"`
	Detail     string            `json:"detail" yaml:"detail"`
	Paths      map[string]string `json:"paths" yaml:"paths"`
	WillChange bool              `json:"will_change" yaml:"will_change"`
	Severity   Severity          `json:"severity" yaml:"severity"`
}

// Plan is the ordered action sequence for one reconciliation pass.
type Plan struct {
	OK      bool     `json:"ok" yaml:"ok"`
	Actions []Action `json:"actions" yaml:"actions"`
	Notes   []string `json:"notes" yaml:"notes"`
}

// Planner derives plans. It holds only read-only collaborators.
type Planner struct {
	settings *config.Settings
	layout   paths.Layout
}

// New builds a planner.
func New(s *config.Settings, layout paths.Layout) *Planner {
	return &Planner{settings: s, layout: layout}
}

// Plan computes the full action sequence for cfg.
func (p *Planner) Plan(cfg *config.ResolvedConfig) Plan {
	var actions []Action
	var notes []string
	ok := true

	validate := cfg.Steam.ForceValidate
	if validate {
		notes = append(notes, "force_validate=true: SteamCMD would run validate where applicable.")
	}

	for _, d := range cfg.Dlcs {
		target := filepath.Join(p.layout.Dlcs, d.MountName)
		marker := filepath.Join(target, content.MarkerFileName)
		markerExists := exists(marker)
		severity := SeverityWarn
		if markerExists {
			severity = SeverityInfo
		}
		actions = append(actions, Action{
			Kind:       KindInstallDlc,
			Target:     fmt.Sprintf("%s (%d)", d.Name, d.AppID),
			Detail:     "SteamCMD app_update into shared dlcs store",
			Paths:      map[string]string{"dest": target, "marker": marker},
			WillChange: !markerExists,
			Severity:   severity,
		})
	}

	for _, pair := range cfg.AllWorkshopItems() {
		actions = append(actions, p.planWorkshopItem(pair.Category, pair.Item))
	}

	actions = append(actions, p.planWorkshopLinks(cfg)...)

	if cfg.Ocap.Enabled {
		ocapActions, ocapOK := p.planOcap(cfg.Ocap)
		actions = append(actions, ocapActions...)
		ok = ok && ocapOK
	}

	actions = append(actions, p.planCustomMods(cfg)...)

	return Plan{OK: ok, Actions: actions, Notes: notes}
}

func (p *Planner) planWorkshopItem(category string, item config.WorkshopItem) Action {
	id := strconv.FormatInt(item.ID, 10)
	dest := filepath.Join(p.layout.StoreDir(category), id)
	marker := filepath.Join(dest, content.MarkerFileName)
	cache := paths.WorkshopCacheDir(p.settings, item.ID)

	severity := SeverityInfo
	detail := "SteamCMD workshop_download_item would run; cache exists."
	if !exists(cache) {
		detail = "SteamCMD workshop_download_item would run; cache currently missing."
		if item.Required {
			severity = SeverityWarn
		}
	}

	return Action{
		Kind:       KindDownloadWorkshop,
		Target:     fmt.Sprintf("%s:%s (%d)", category, item.DisplayName(), item.ID),
		Detail:     detail,
		Paths:      map[string]string{"cache": cache, "dest": dest, "marker": marker},
		WillChange: !exists(marker),
		Severity:   severity,
	}
}

// planWorkshopLinks emits link intents for every workshop item.
// Symlinks are unconditionally recreated on execution, so WillChange
// is always true here.
func (p *Planner) planWorkshopLinks(cfg *config.ResolvedConfig) []Action {
	var actions []Action

	link := func(category string, item config.WorkshopItem, store, instDir, detail string) {
		id := strconv.FormatInt(item.ID, 10)
		src := filepath.Join(store, id)
		severity := SeverityWarn
		if exists(src) {
			severity = SeverityInfo
		}
		actions = append(actions, Action{
			Kind:       KindLink,
			Target:     fmt.Sprintf("%s:%d", category, item.ID),
			Detail:     detail,
			Paths:      map[string]string{"src": src, "dst": filepath.Join(instDir, id)},
			WillChange: true,
			Severity:   severity,
		})
	}

	for _, it := range cfg.Workshop.Mods {
		link(config.CategoryMods, it, p.layout.Mods, p.layout.InstMods, "Symlink into instance mods")
	}
	for _, it := range cfg.Workshop.Maps {
		link(config.CategoryMaps, it, p.layout.Maps, p.layout.InstMods, "Symlink into instance mods (maps are mods in Arma terms)")
	}
	for _, it := range cfg.Workshop.ServerMods {
		link(config.CategoryServerMods, it, p.layout.ServerMods, p.layout.InstServerMods, "Symlink into instance servermods")
	}
	return actions
}

func (p *Planner) planOcap(oc config.OcapConfig) ([]Action, bool) {
	if oc.LinkTo != config.CategoryMods && oc.LinkTo != config.CategoryServerMods {
		return []Action{{
			Kind:       KindOcapConfigError,
			Target:     "ocap",
			Detail:     "ocap.link_to must be 'mods' or 'servermods'",
			Paths:      map[string]string{"link_to": oc.LinkTo},
			WillChange: false,
			Severity:   SeverityError,
		}}, false
	}

	src := p.layout.Ocap
	if oc.SourceSubdir != "" {
		src = filepath.Join(p.layout.Ocap, oc.SourceSubdir)
	}
	dstBase := p.layout.InstMods
	if oc.LinkTo == config.CategoryServerMods {
		dstBase = p.layout.InstServerMods
	}
	severity := SeverityWarn
	if exists(src) {
		severity = SeverityInfo
	}
	return []Action{{
		Kind:       KindLinkOcap,
		Target:     "ocap:" + oc.LinkTo,
		Detail:     "Symlink custom-built OCAP mod from shared ocap store into instance",
		Paths:      map[string]string{"src": src, "dst": filepath.Join(dstBase, oc.LinkName)},
		WillChange: true,
		Severity:   severity,
	}}, true
}

func (p *Planner) planCustomMods(cfg *config.ResolvedConfig) []Action {
	var actions []Action

	plan := func(entry config.CustomModEntry, kind, targetPrefix, instDir, detail string) {
		token := strings.TrimPrefix(strings.TrimSpace(entry.Name), "@")
		src := p.customModDir(entry.Name)
		severity := SeverityWarn
		if exists(src) {
			severity = SeverityInfo
		}
		actions = append(actions, Action{
			Kind:   kind,
			Target: fmt.Sprintf("%s:%s", targetPrefix, token),
			Detail: detail,
			Paths: map[string]string{
				"src":      src,
				"dst_root": filepath.Join(p.layout.ArmaRoot, "@"+token),
				"dst_inst": filepath.Join(instDir, token),
			},
			WillChange: true,
			Severity:   severity,
		})
	}

	for _, entry := range cfg.CustomMods.Mods {
		plan(entry, KindLinkCustomMod, "custom-mod", p.layout.InstMods,
			"Symlink custom mod folder into game root and instance mods")
	}
	for _, entry := range cfg.CustomMods.ServerMods {
		plan(entry, KindLinkCustomServermod, "custom-servermod", p.layout.InstServerMods,
			"Symlink custom servermod folder into game root and instance servermods")
	}
	return actions
}

// customModDir mirrors the executor's name resolution without
// mutating anything: exact folder first, then the @-toggled spelling.
func (p *Planner) customModDir(name string) string {
	raw := strings.TrimSpace(name)
	if raw == "" {
		return p.layout.InstCustomMods
	}
	exact := filepath.Join(p.layout.InstCustomMods, raw)
	if exists(exact) {
		return exact
	}
	var alt string
	if strings.HasPrefix(raw, "@") {
		alt = filepath.Join(p.layout.InstCustomMods, strings.TrimPrefix(raw, "@"))
	} else {
		alt = filepath.Join(p.layout.InstCustomMods, "@"+raw)
	}
	if exists(alt) {
		return alt
	}
	return exact
}

func exists(p string) bool {
	_, err := os.Lstat(p)
	return err == nil
}
