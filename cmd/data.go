package main

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"backoffice/internal/catalog/domain/entity"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed [entity...]",
	Short: "Load entity collections into the cache store",
	Long: `Load the named collections (all of them when none is given). A collection
already present in the cache store is kept; missing ones are fetched from their
demo source.

Entities: ` + strings.Join(entity.Names, ", "),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, container, done, err := openContainer(cmd)
		if err != nil {
			return err
		}
		defer done()

		loadErr := container.Catalog.LoadAll(ctx, args...)
		for _, s := range container.Catalog.Screens() {
			if len(args) > 0 && !slices.Contains(args, s.Name()) {
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-10s %4d records\n", s.Name(), s.Len())
		}
		return loadErr
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset <entity>",
	Short: "Drop a cached collection and seed it again",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, container, done, err := openContainer(cmd)
		if err != nil {
			return err
		}
		defer done()

		if err := container.Catalog.Reset(ctx, args[0]); err != nil {
			return err
		}
		s, _ := container.Catalog.Screen(args[0])
		fmt.Fprintf(cmd.OutOrStdout(), "%s reset: %d records\n", s.Name(), s.Len())
		return nil
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Compute the dashboard statistics and print them as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, container, done, err := openContainer(cmd)
		if err != nil {
			return err
		}
		defer done()

		stats, err := container.Dashboard.Compute(ctx)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	},
}
