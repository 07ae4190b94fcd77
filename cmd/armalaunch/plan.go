package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tacticalops/armalaunch/pkg/errors"
	"github.com/tacticalops/armalaunch/pkg/logging"
	"github.com/tacticalops/armalaunch/pkg/planner"
)

var planFormat string

func init() {
	planCmd.Flags().StringVar(&planFormat, "format", "text", "Output format: text, json, or yaml")
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what a sync would do without touching anything",
	Long: `Plan evaluates the configured DLCs, workshop items, and link layout
against the current on-disk state and prints the actions a sync would
take. Nothing is downloaded, written, or linked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetLogger("cmd.plan")

		a, err := buildApp()
		if err != nil {
			return err
		}

		p := planner.New(a.settings, a.layout).Plan(a.cfg)
		logger.Info().Int("actions", len(p.Actions)).Bool("ok", p.OK).Msg("Plan computed")

		switch planFormat {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(p); err != nil {
				return errors.Wrap(err, errors.ErrInternal, "failed to encode plan")
			}
		case "yaml":
			enc := yaml.NewEncoder(os.Stdout)
			defer enc.Close()
			if err := enc.Encode(p); err != nil {
				return errors.Wrap(err, errors.ErrInternal, "failed to encode plan")
			}
		case "text":
			fmt.Print(renderPlanText(p))
		default:
			return errors.Newf(errors.ErrInvalidInput, "unknown format %q", planFormat)
		}

		if !p.OK {
			return errors.New(errors.ErrConfigValid, "plan contains configuration errors")
		}
		return nil
	},
}
