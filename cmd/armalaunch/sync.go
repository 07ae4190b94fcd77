package main

import (
	"github.com/spf13/cobra"

	"github.com/tacticalops/armalaunch/pkg/logging"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile DLCs, workshop content, and the instance link layout",
	Long: `Sync downloads missing or stale content through SteamCMD, rotates
signature keys, and rebuilds the instance symlink layout. With
--dry-run it reports what it would do without changing anything.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetLogger("cmd.sync")
		logger.Info().Bool("dryRun", dryRun).Msg("Starting sync")

		a, err := buildApp()
		if err != nil {
			return err
		}
		if err := a.orch.PrepareEnvironment(); err != nil {
			return err
		}
		if err := a.orch.SyncContent(cmd.Context(), a.cfg, dryRun); err != nil {
			return err
		}

		logger.Info().Msg("Sync finished")
		return nil
	},
}
