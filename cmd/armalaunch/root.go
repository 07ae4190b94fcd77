package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tacticalops/armalaunch/pkg/config"
	"github.com/tacticalops/armalaunch/pkg/content"
	"github.com/tacticalops/armalaunch/pkg/errors"
	"github.com/tacticalops/armalaunch/pkg/logging"
	"github.com/tacticalops/armalaunch/pkg/orchestrator"
	"github.com/tacticalops/armalaunch/pkg/paths"
	"github.com/tacticalops/armalaunch/pkg/steamapi"
	"github.com/tacticalops/armalaunch/pkg/steamcmd"
)

var (
	verbosity  int
	dryRun     bool
	configPath string

	rootCmd = &cobra.Command{
		Use:   "armalaunch",
		Short: "Arma 3 dedicated server content manager and launcher",
		Long: `armalaunch reconciles an Arma 3 dedicated server installation against
a declarative config: Steam Workshop mods, Creator DLCs, custom mod
folders, and the per-instance symlink layout the server reads from.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command. Called once from main.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		if code := errors.GetErrorCode(err); code != errors.ErrUnknown {
			fmt.Fprintf(os.Stderr, "Error [%s]: %v\n", code, err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Preview changes without executing them")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "Path to the instance config file (TOML or YAML)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(modsCmd)
	rootCmd.AddCommand(gencfgCmd)
	rootCmd.AddCommand(runCmd)
}

func defaultConfigPath() string {
	if p := os.Getenv("ARMA_CONFIG"); p != "" {
		return p
	}
	return "config.toml"
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("armalaunch version %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

// app bundles the wired collaborators every command needs.
type app struct {
	settings *config.Settings
	layout   paths.Layout
	cfg      *config.ResolvedConfig
	manager  *content.Manager
	orch     *orchestrator.Orchestrator
}

// buildApp loads settings and the instance config and wires the
// content manager and orchestrator.
func buildApp() (*app, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	layout := paths.NewLayout(settings)
	tool := steamcmd.New(settings, steamcmd.SettingsCredentials{Settings: settings})
	oracle := steamapi.NewWebAPI()
	manager := content.NewManager(settings, layout, tool, oracle)

	return &app{
		settings: settings,
		layout:   layout,
		cfg:      cfg,
		manager:  manager,
		orch:     orchestrator.New(settings, layout, tool, manager),
	}, nil
}
