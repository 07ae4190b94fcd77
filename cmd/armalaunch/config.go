package main

import (
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/tacticalops/armalaunch/pkg/errors"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration as TOML",
	Long: `Config loads the configuration file, applies defaults, and prints the
fully merged result. Useful for checking what a sync or run would
actually see after defaulting and validation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}

		enc := toml.NewEncoder(os.Stdout)
		enc.SetIndentTables(true)
		if err := enc.Encode(a.cfg); err != nil {
			return errors.Wrap(err, errors.ErrInternal, "failed to encode configuration")
		}
		return nil
	},
}
