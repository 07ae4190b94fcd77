package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tacticalops/armalaunch/pkg/logging"
)

var runSkipSync bool

func init() {
	runCmd.Flags().BoolVar(&runSkipSync, "skip-sync", false, "Launch without reconciling content first")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Sync content, generate configs, and launch the server",
	Long: `Run performs the full bring-up cycle: ensure the server install,
reconcile all content, generate the config files, then launch the
dedicated server and any configured headless clients. Blocks until
the server exits or the process receives SIGINT/SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetLogger("cmd.run")

		a, err := buildApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		if err := a.orch.PrepareEnvironment(); err != nil {
			return err
		}
		if !runSkipSync {
			if err := a.orch.EnsureArma(ctx); err != nil {
				return err
			}
			if err := a.orch.SyncContent(ctx, a.cfg, false); err != nil {
				return err
			}
		}
		if err := a.orch.GenerateConfigs(a.cfg); err != nil {
			return err
		}
		if err := a.orch.StartServer(a.cfg); err != nil {
			return err
		}

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		done := make(chan error, 1)
		go func() { done <- a.orch.Wait() }()

		select {
		case sig := <-sigs:
			logger.Info().Str("signal", sig.String()).Msg("Shutting down")
			a.orch.Stop()
			<-done
			return nil
		case err := <-done:
			if err != nil {
				logger.Error().Err(err).Msg("Server exited with error")
			}
			return err
		}
	},
}
