// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// reloadDebounce coalesces the bursts of events a single save produces.
const reloadDebounce = 200 * time.Millisecond

// Watch reloads the catalog whenever the snapshot file at path is written
// or replaced. A snapshot that fails to load is logged and the current
// catalog stays. Watch blocks until ctx is done.
func (s *Store) Watch(ctx context.Context, path string) error {
	if s.snap == nil {
		return fmt.Errorf("watching %s: store has no snapshotter", path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: a rename into place replaces the file's inode.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}
	s.logger.Info("watching snapshot", zap.String("path", abs))

	timer := time.NewTimer(reloadDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			s.logger.Debug("snapshot changed", zap.String("op", event.Op.String()))
			timer.Reset(reloadDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watcher error", zap.Error(err))

		case <-timer.C:
			s.reload(ctx)
		}
	}
}

func (s *Store) reload(ctx context.Context) {
	c, err := s.snap.Load(ctx)
	if err != nil {
		s.logger.Warn("snapshot reload failed, keeping current catalog", zap.Error(err))
		return
	}
	s.Replace(c)
	s.logger.Info("snapshot reloaded",
		zap.Int("categories", len(c.Categories)),
		zap.Int("records", c.TotalCount()))
}
