// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/loadout-engine/internal/rank"
)

var topCmd = &cobra.Command{
	Use:   "top <mode> <range>",
	Short: "List the best-ranked weapons of a category",
	Args:  cobra.ExactArgs(2),
	RunE:  runTop,
}

func init() {
	topCmd.Flags().Int("limit", 0, "number of weapons to list (default 10)")
	topCmd.Flags().Bool("json", false, "output records as JSON")

	viper.BindPFlag("search.top_limit", topCmd.Flags().Lookup("limit"))

	rootCmd.AddCommand(topCmd)
}

func runTop(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig("")
	if err != nil {
		return err
	}

	store, release, err := openStore(context.Background(), cfg.Snapshot)
	if err != nil {
		return err
	}
	defer release()

	mode, rng := args[0], args[1]
	recs, reason := rank.Top(store.Current(), mode, rng, cfg.Search.TopLimit)
	switch reason {
	case rank.ReasonOK:
	case rank.ReasonNoMatch:
		fmt.Fprintf(os.Stdout, "No weapons in %s - %s.\n", mode, rng)
		return nil
	default:
		return fmt.Errorf("cannot list %s - %s (%s)", mode, rng, reason)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		return rank.FormatJSON(recs, os.Stdout)
	}
	rank.FormatTop(mode, rng, recs, os.Stdout)
	return nil
}
