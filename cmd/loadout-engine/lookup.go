// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/loadout-engine/internal/rank"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <mode> <range> <name...>",
	Short: "Show the loadout of one weapon in a category",
	Long: `Lookup finds a weapon inside one category, for example

  loadout-engine lookup Resurgence Sniper kar

An exact name wins; otherwise the best-ranked weapon whose name contains
the fragment is shown.`,
	Args: cobra.MinimumNArgs(3),
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().Bool("json", false, "output the record as JSON")

	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig("")
	if err != nil {
		return err
	}

	store, release, err := openStore(context.Background(), cfg.Snapshot)
	if err != nil {
		return err
	}
	defer release()

	mode, rng, name := args[0], args[1], strings.Join(args[2:], " ")
	rec, reason := rank.Lookup(store.Current(), mode, rng, name)
	if reason != rank.ReasonOK {
		return fmt.Errorf("no weapon matching %q in %s - %s (%s)", name, mode, rng, reason)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		return rank.FormatJSON(rec, os.Stdout)
	}
	rank.FormatRecord(rec, os.Stdout)
	return nil
}
