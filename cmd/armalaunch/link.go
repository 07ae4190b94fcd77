package main

import (
	"github.com/spf13/cobra"

	"github.com/tacticalops/armalaunch/pkg/logging"
)

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Rebuild the instance symlink layout from already-installed content",
	Long: `Link rebuilds all instance and game-root symlinks without contacting
Steam. Useful after manually placing content into the shared store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetLogger("cmd.link")
		logger.Info().Bool("dryRun", dryRun).Msg("Rebuilding link layout")

		a, err := buildApp()
		if err != nil {
			return err
		}
		if err := a.orch.PrepareEnvironment(); err != nil {
			return err
		}
		if err := a.manager.EnsureBonusFolders(a.cfg.BonusFolders, dryRun); err != nil {
			return err
		}
		return a.manager.LinkInstanceContent(a.cfg, dryRun)
	},
}
