// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog holds the current weapon catalog and persists it as a
// single snapshot. Readers never block; a new catalog replaces the old one
// in a single atomic swap.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/pdiddy/loadout-engine/pkg/types"
)

var (
	// ErrNoSnapshot means no snapshot has been written yet.
	ErrNoSnapshot = errors.New("no catalog snapshot")

	// ErrSnapshotCorrupt means a snapshot exists but cannot be trusted.
	ErrSnapshotCorrupt = errors.New("catalog snapshot corrupt")

	// ErrSnapshotLoad wraps any failure of Store.LoadSnapshot.
	ErrSnapshotLoad = errors.New("loading catalog snapshot")
)

// Snapshotter persists exactly one catalog.
type Snapshotter interface {
	Save(ctx context.Context, c *types.Catalog) error
	Load(ctx context.Context) (*types.Catalog, error)
}

// Store owns the current catalog. The catalog behind Current must be
// treated as read-only by callers.
type Store struct {
	current atomic.Pointer[types.Catalog]
	snap    Snapshotter
	logger  *zap.Logger
}

// NewStore returns a store holding an empty catalog. snap may be nil, in
// which case Commit only swaps and LoadSnapshot reports ErrNoSnapshot.
func NewStore(snap Snapshotter, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{snap: snap, logger: logger}
	s.current.Store(types.EmptyCatalog())
	return s
}

// Current returns the catalog readers should query.
func (s *Store) Current() *types.Catalog {
	return s.current.Load()
}

// Replace installs c as the current catalog without persisting it.
func (s *Store) Replace(c *types.Catalog) {
	if c == nil {
		c = types.EmptyCatalog()
	}
	s.current.Store(c)
}

// Commit installs c and then persists it. The swap stands even when
// persisting fails.
func (s *Store) Commit(ctx context.Context, c *types.Catalog) error {
	if c == nil {
		c = types.EmptyCatalog()
	}
	s.Replace(c)
	s.logger.Info("catalog replaced",
		zap.Int("categories", len(c.Categories)),
		zap.Int("records", c.TotalCount()))

	if s.snap == nil {
		return nil
	}
	if err := s.snap.Save(ctx, c); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads the persisted catalog and installs it. On failure the
// store holds an empty catalog and the returned error wraps both
// ErrSnapshotLoad and the cause.
func (s *Store) LoadSnapshot(ctx context.Context) error {
	if s.snap == nil {
		s.Replace(nil)
		return fmt.Errorf("%w: %w", ErrSnapshotLoad, ErrNoSnapshot)
	}

	c, err := s.snap.Load(ctx)
	if err != nil {
		s.Replace(nil)
		if errors.Is(err, ErrNoSnapshot) {
			s.logger.Info("no snapshot, starting with empty catalog")
		} else {
			s.logger.Warn("snapshot unusable, starting with empty catalog", zap.Error(err))
		}
		return fmt.Errorf("%w: %w", ErrSnapshotLoad, err)
	}

	s.Replace(c)
	s.logger.Info("snapshot loaded",
		zap.Int("categories", len(c.Categories)),
		zap.Int("records", c.TotalCount()),
		zap.Time("built_at", c.BuiltAt))
	return nil
}
