package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/tacticalops/armalaunch/pkg/content"
	"github.com/tacticalops/armalaunch/pkg/steamapi"
)

var modsCmd = &cobra.Command{
	Use:   "mods",
	Short: "List configured workshop items and their install state",
	Long: `Mods lists every workshop item in the configuration with its category,
install state, and display name. Names come from the local install
marker when present; remaining ids are resolved against the Steam Web
API in one batch.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}

		items := a.cfg.AllWorkshopItems()

		// Names known locally win; only unresolved ids go to the API.
		names := make(map[int64]string, len(items))
		var unresolved []int64
		for _, ci := range items {
			if ci.Item.Name != "" {
				names[ci.Item.ID] = ci.Item.Name
				continue
			}
			marker := filepath.Join(
				a.layout.StoreDir(ci.Category),
				strconv.FormatInt(ci.Item.ID, 10),
				content.MarkerFileName,
			)
			if m, ok := content.ReadMarker(marker); ok && m.Name != "" {
				names[ci.Item.ID] = m.Name
				continue
			}
			unresolved = append(unresolved, ci.Item.ID)
		}
		if len(unresolved) > 0 {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			for id, name := range steamapi.NewWebAPI().ResolveNames(ctx, unresolved) {
				names[id] = name
			}
		}

		for _, ci := range items {
			state := styleNoop.Render("missing")
			marker := filepath.Join(
				a.layout.StoreDir(ci.Category),
				strconv.FormatInt(ci.Item.ID, 10),
				content.MarkerFileName,
			)
			if m, ok := content.ReadMarker(marker); ok {
				state = styleChange.Render("installed " + m.SyncedAt)
			}
			fmt.Printf("%-12s %-11d %-40s %s\n",
				ci.Category, ci.Item.ID, names[ci.Item.ID], state)
		}
		return nil
	},
}
