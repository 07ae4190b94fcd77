package main

import (
	"github.com/spf13/cobra"

	"github.com/tacticalops/armalaunch/pkg/logging"
)

var gencfgCmd = &cobra.Command{
	Use:   "gencfg",
	Short: "Generate the server, headless client, and profile config files",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetLogger("cmd.gencfg")

		a, err := buildApp()
		if err != nil {
			return err
		}
		if err := a.orch.PrepareEnvironment(); err != nil {
			return err
		}
		if err := a.orch.GenerateConfigs(a.cfg); err != nil {
			return err
		}

		logger.Info().Msg("Config files generated")
		return nil
	},
}
