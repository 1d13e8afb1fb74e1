// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/pdiddy/loadout-engine/internal/build"
	"github.com/pdiddy/loadout-engine/internal/catalog"
	"github.com/pdiddy/loadout-engine/pkg/types"
)

// setDefaults registers every scalar setting so that env variables such as
// LOADOUT_ENGINE_SNAPSHOT_PATH resolve.
func setDefaults() {
	d := types.DefaultPipelineConfig()

	viper.SetDefault("build.concurrency", d.Build.Concurrency)
	viper.SetDefault("build.source", string(d.Build.Source))
	viper.SetDefault("build.html_dir", d.Build.HTMLDir)
	viper.SetDefault("build.browser.headless", d.Build.Browser.Headless)
	viper.SetDefault("build.browser.bin", d.Build.Browser.Bin)
	viper.SetDefault("build.browser.control_url", d.Build.Browser.ControlURL)
	viper.SetDefault("build.browser.timeout", d.Build.Browser.Timeout)
	viper.SetDefault("build.browser.settle_delay", d.Build.Browser.SettleDelay)
	viper.SetDefault("build.browser.tab_delay", d.Build.Browser.TabDelay)
	viper.SetDefault("build.browser.item_delay", d.Build.Browser.ItemDelay)

	viper.SetDefault("snapshot.backend", string(d.Snapshot.Backend))
	viper.SetDefault("snapshot.path", d.Snapshot.Path)

	viper.SetDefault("search.max_results", d.Search.MaxResults)
	viper.SetDefault("search.top_limit", d.Search.TopLimit)

	viper.SetDefault("serve.addr", d.Serve.Addr)
	viper.SetDefault("serve.watch", d.Serve.Watch)
}

// loadConfig resolves the pipeline configuration from defaults, the config
// file, env, and bound flags. The category list comes from the file named
// by categoriesFile, the config's categories key, or the built-in set.
func loadConfig(categoriesFile string) (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}

	switch {
	case categoriesFile != "":
		cats, err := build.LoadCategories(categoriesFile)
		if err != nil {
			return cfg, err
		}
		cfg.Categories = cats
	case len(cfg.Categories) == 0:
		cfg.Categories = types.DefaultCategories()
	}
	return cfg, nil
}

// openSnapshot returns the snapshotter for cfg and a func releasing it.
func openSnapshot(cfg types.SnapshotConfig) (catalog.Snapshotter, func(), error) {
	switch cfg.Backend {
	case types.BackendJSON, "":
		return catalog.NewFileSnapshot(cfg.Path), func() {}, nil
	case types.BackendSQLite:
		snap, err := catalog.NewSQLiteSnapshot(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return snap, func() { snap.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown snapshot backend %q", cfg.Backend)
	}
}

// openStore opens the configured snapshot and loads it into a new store.
// A missing or unusable snapshot leaves the store empty and prints a hint;
// it is not an error for query commands.
func openStore(ctx context.Context, cfg types.SnapshotConfig) (*catalog.Store, func(), error) {
	snap, release, err := openSnapshot(cfg)
	if err != nil {
		return nil, nil, err
	}
	store := catalog.NewStore(snap, logger)

	if err := store.LoadSnapshot(ctx); err != nil {
		if errors.Is(err, catalog.ErrNoSnapshot) {
			fmt.Fprintf(os.Stderr, "No catalog at %s yet; run `loadout-engine build` first.\n", cfg.Path)
		} else {
			fmt.Fprintf(os.Stderr, "Warning: %v; continuing with an empty catalog.\n", err)
		}
	}
	return store, release, nil
}
