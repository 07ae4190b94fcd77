// Package orchestrator drives a full server bring-up: environment
// preparation, content reconciliation, config generation, and process
// launch. Each step is exposed separately so the CLI can run any
// subset.
package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tacticalops/armalaunch/pkg/cfggen"
	"github.com/tacticalops/armalaunch/pkg/config"
	"github.com/tacticalops/armalaunch/pkg/content"
	"github.com/tacticalops/armalaunch/pkg/errors"
	"github.com/tacticalops/armalaunch/pkg/logging"
	"github.com/tacticalops/armalaunch/pkg/paths"
	"github.com/tacticalops/armalaunch/pkg/procrunner"
	"github.com/tacticalops/armalaunch/pkg/steamcmd"
)

// Generated config file names under the instance config directory.
const (
	ServerCfgName   = "generated_a3server.cfg"
	HeadlessCfgName = "generated_hc_a3client.cfg"
)

// Orchestrator owns one reconciliation-and-launch cycle for a single
// server instance.
type Orchestrator struct {
	settings *config.Settings
	layout   paths.Layout
	tool     steamcmd.Client
	manager  *content.Manager
	runner   *procrunner.Runner
	log      zerolog.Logger
}

// New wires an orchestrator from its collaborators.
func New(s *config.Settings, layout paths.Layout, tool steamcmd.Client, manager *content.Manager) *Orchestrator {
	return &Orchestrator{
		settings: s,
		layout:   layout,
		tool:     tool,
		manager:  manager,
		runner:   procrunner.NewRunner(layout.InstLogs),
		log:      logging.GetLogger("orchestrator"),
	}
}

// PrepareEnvironment creates every managed directory.
func (o *Orchestrator) PrepareEnvironment() error {
	return o.layout.EnsureDirs()
}

// EnsureArma installs or updates the dedicated server itself. Honors
// SKIP_INSTALL the same way workshop content does.
func (o *Orchestrator) EnsureArma(ctx context.Context) error {
	if o.settings.SkipInstall {
		o.log.Info().Msg("SKIP_INSTALL set, not updating Arma server")
		return nil
	}
	o.log.Info().Str("dir", o.settings.ArmaRoot).Msg("Ensuring Arma server install")
	return o.tool.EnsureApp(ctx, steamcmd.AppOptions{
		AppID:      o.settings.ArmaAppID,
		InstallDir: o.settings.ArmaRoot,
		Validate:   true,
	})
}

// SyncContent runs the full reconciliation pass: DLCs, workshop items,
// bonus folders, then the instance link layout. DLC and workshop
// failures are both surfaced; linking only runs when installs
// succeeded.
func (o *Orchestrator) SyncContent(ctx context.Context, cfg *config.ResolvedConfig, dryRun bool) error {
	validate := cfg.Steam.ForceValidate

	if _, err := o.manager.EnsureDlcs(ctx, cfg.Dlcs, validate, dryRun); err != nil {
		return err
	}
	if _, err := o.manager.EnsureWorkshop(ctx, cfg, dryRun); err != nil {
		return err
	}
	if err := o.manager.EnsureBonusFolders(cfg.BonusFolders, dryRun); err != nil {
		return err
	}
	return o.manager.LinkInstanceContent(cfg, dryRun)
}

// GenerateConfigs renders the server cfg, the headless client cfg, and
// the difficulty profile into the instance tree.
func (o *Orchestrator) GenerateConfigs(cfg *config.ResolvedConfig) error {
	if _, err := cfggen.GenerateServerCfg(cfg, filepath.Join(o.layout.InstConfig, ServerCfgName)); err != nil {
		return err
	}
	if _, err := cfggen.GenerateHeadlessCfg(cfg, filepath.Join(o.layout.InstConfig, HeadlessCfgName)); err != nil {
		return err
	}
	profilesDir := o.profilesDir(cfg)
	_, err := cfggen.GenerateProfileCfg(
		filepath.Join(profilesDir, "Users", "server"), "server")
	return err
}

func (o *Orchestrator) profilesDir(cfg *config.ResolvedConfig) string {
	sub := cfg.Server.ProfilesSubdir
	if sub == "" {
		sub = "profiles"
	}
	return filepath.Join(o.settings.ArmaInstance, sub)
}

// buildModArg returns a -mod= or -serverMod= style argument listing
// every entry of dir as an absolute path in lexicographic order, or ""
// when the directory is empty.
func buildModArg(flag, dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) == 0 {
		return ""
	}
	var names []string
	for _, e := range entries {
		names = append(names, filepath.Join(dir, e.Name()))
	}
	sort.Strings(names)
	return flag + strings.Join(names, ";")
}

// StartServer launches the dedicated server and any configured
// headless clients. Children are tracked by the runner; call Wait or
// Stop to finish the cycle.
func (o *Orchestrator) StartServer(cfg *config.ResolvedConfig) error {
	if _, err := os.Stat(o.settings.ArmaBinary); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "arma binary not found at %s", o.settings.ArmaBinary)
	}

	port := cfg.Server.Port
	argv := []string{
		o.settings.ArmaBinary,
		"-port=" + strconv.Itoa(port),
		"-config=" + filepath.Join(o.layout.InstConfig, ServerCfgName),
		"-profiles=" + o.profilesDir(cfg),
		"-name=server",
	}
	if cfg.Runtime.CPUCount > 0 {
		argv = append(argv, "-cpuCount="+strconv.Itoa(cfg.Runtime.CPUCount))
	}
	if mod := buildModArg("-mod=", o.layout.InstMods); mod != "" {
		argv = append(argv, mod)
	}
	if sm := buildModArg("-serverMod=", o.layout.InstServerMods); sm != "" {
		argv = append(argv, sm)
	}
	argv = append(argv, cfg.Runtime.ExtraArgs...)

	o.log.Info().Strs("args", argv[1:]).Msg("Launching server")
	if _, err := o.runner.Start("a3server", o.settings.ArmaRoot, argv); err != nil {
		return err
	}

	if hc := cfg.HeadlessClients; hc.Enabled {
		for i := 0; i < hc.Count; i++ {
			hcArgv := []string{
				o.settings.ArmaBinary,
				"-client",
				"-connect=127.0.0.1",
				"-port=" + strconv.Itoa(port),
				"-config=" + filepath.Join(o.layout.InstConfig, HeadlessCfgName),
				"-profiles=" + o.profilesDir(cfg),
			}
			if mod := buildModArg("-mod=", o.layout.InstMods); mod != "" {
				hcArgv = append(hcArgv, mod)
			}
			hcArgv = append(hcArgv, hc.ExtraArgs...)
			name := "hc" + strconv.Itoa(i+1)
			if _, err := o.runner.Start(name, o.settings.ArmaRoot, hcArgv); err != nil {
				o.runner.StopAll()
				return err
			}
		}
	}
	return nil
}

// Wait blocks until the server process exits, then stops any remaining
// headless clients.
func (o *Orchestrator) Wait() error {
	server := o.runner.Find("a3server")
	if server == nil {
		return errors.New(errors.ErrInternal, "no server process tracked")
	}
	err := server.Wait()
	o.runner.StopAll()
	return err
}

// Stop terminates every tracked process.
func (o *Orchestrator) Stop() {
	o.runner.StopAll()
}

// Status reports liveness per tracked process name.
func (o *Orchestrator) Status() map[string]bool {
	return o.runner.Status()
}
