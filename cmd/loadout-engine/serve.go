// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/loadout-engine/internal/server"
	"github.com/pdiddy/loadout-engine/pkg/types"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve catalog queries over HTTP",
	Long: `Serve loads the catalog snapshot and answers search, lookup, top, and
stats queries as JSON. With --watch, a rebuilt snapshot is picked up without
a restart.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	serveCmd.Flags().Bool("watch", false, "reload the catalog when the snapshot file changes")

	viper.BindPFlag("serve.addr", serveCmd.Flags().Lookup("addr"))
	viper.BindPFlag("serve.watch", serveCmd.Flags().Lookup("watch"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig("")
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, release, err := openStore(ctx, cfg.Snapshot)
	if err != nil {
		return err
	}
	defer release()

	srv := &http.Server{
		Addr:              cfg.Serve.Addr,
		Handler:           server.New(store, cfg.Serve, cfg.Search, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if cfg.Serve.Watch {
		if cfg.Snapshot.Backend == types.BackendSQLite {
			logger.Warn("--watch follows JSON snapshots only; ignoring for sqlite")
		} else {
			g.Go(func() error { return store.Watch(ctx, cfg.Snapshot.Path) })
		}
	}

	return g.Wait()
}
