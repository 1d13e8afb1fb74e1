// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/loadout-engine/internal/rank"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show record counts per category",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().Bool("json", false, "output stats as JSON")

	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig("")
	if err != nil {
		return err
	}

	store, release, err := openStore(context.Background(), cfg.Snapshot)
	if err != nil {
		return err
	}
	defer release()

	stats := rank.Stats(store.Current())
	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		return rank.FormatJSON(stats, os.Stdout)
	}
	rank.FormatStats(stats, os.Stdout)
	return nil
}
