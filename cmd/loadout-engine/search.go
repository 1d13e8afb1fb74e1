// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/loadout-engine/internal/rank"
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search the catalog for weapons by name",
	Long: `Search scores every weapon in the catalog against the query. Exact
name matches rank first, then names containing the query, then close
spellings. Ties keep catalog order.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("max-results", 0, "maximum number of results to return (default 5)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	viper.BindPFlag("search.max_results", searchCmd.Flags().Lookup("max-results"))

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig("")
	if err != nil {
		return err
	}

	store, release, err := openStore(context.Background(), cfg.Snapshot)
	if err != nil {
		return err
	}
	defer release()

	res := rank.Search(store.Current(), strings.Join(args, " "), cfg.Search.MaxResults)

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		return rank.FormatJSON(res, os.Stdout)
	}
	rank.FormatTable(res, os.Stdout)
	return nil
}
