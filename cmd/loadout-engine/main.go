// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the loadout-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is built in PersistentPreRunE and synced on exit.
var logger = zap.NewNop()

// rootCmd is the base command for the loadout-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "loadout-engine",
	Short: "Build and query a catalog of ranked weapon loadouts",
	Long: `loadout-engine scrapes weapon loadout pages into a catalog of ranked
records per game mode and range, persists it as a single snapshot, and
answers free-text weapon queries against it.

Run build to refresh the snapshot, then search, lookup, top, and stats to
query it, or serve to expose the same queries over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if viper.GetBool("verbose") {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := config.Build()
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./loadout-engine.yaml or ~/.config/loadout-engine/loadout-engine.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
	rootCmd.PersistentFlags().String("snapshot", "", "catalog snapshot path (default all_guns_database.json)")
	rootCmd.PersistentFlags().String("backend", "", "snapshot backend: json or sqlite")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("snapshot.path", rootCmd.PersistentFlags().Lookup("snapshot"))
	viper.BindPFlag("snapshot.backend", rootCmd.PersistentFlags().Lookup("backend"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("loadout-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "loadout-engine"))
		}
	}

	setDefaults()
	viper.SetEnvPrefix("LOADOUT_ENGINE")
	initReplacer()
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// initReplacer maps nested keys such as search.max_results to
// LOADOUT_ENGINE_SEARCH_MAX_RESULTS.
func initReplacer() {
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
