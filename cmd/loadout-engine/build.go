// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/loadout-engine/internal/build"
	"github.com/pdiddy/loadout-engine/internal/catalog"
	"github.com/pdiddy/loadout-engine/internal/rank"
	"github.com/pdiddy/loadout-engine/internal/scrape"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Scrape every configured category and replace the catalog snapshot",
	Long: `Build fetches each configured category page, normalizes its loadouts
into ranked weapon records, and replaces the catalog snapshot in one step.

A category that fails to load is kept as an empty list; the build only fails
when no category produced records, in which case the previous snapshot is
left untouched.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().String("categories", "", "YAML file listing the categories to build")
	buildCmd.Flags().String("source", "", "page source: browser or html")
	buildCmd.Flags().String("html-dir", "", "directory of saved pages for the html source")
	buildCmd.Flags().Int("concurrency", 0, "categories fetched in parallel (default 1)")
	buildCmd.Flags().Bool("json", false, "print the build summary as JSON")

	viper.BindPFlag("build.source", buildCmd.Flags().Lookup("source"))
	viper.BindPFlag("build.html_dir", buildCmd.Flags().Lookup("html-dir"))
	viper.BindPFlag("build.concurrency", buildCmd.Flags().Lookup("concurrency"))

	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	categoriesFile, _ := cmd.Flags().GetString("categories")
	cfg, err := loadConfig(categoriesFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	source, err := scrape.New(cfg.Build, logger)
	if err != nil {
		return err
	}
	defer source.Close()

	snap, release, err := openSnapshot(cfg.Snapshot)
	if err != nil {
		return err
	}
	defer release()
	store := catalog.NewStore(snap, logger)

	builder := build.NewBuilder(source, store, cfg.Build, logger)
	_, summary, err := builder.Build(ctx, cfg.Categories, os.Stdout)

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		if ferr := rank.FormatJSON(summary, os.Stdout); ferr != nil {
			return ferr
		}
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Catalog %s, written to %s\n", summary, cfg.Snapshot.Path)
	return nil
}
