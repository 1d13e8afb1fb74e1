// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package build assembles a catalog from the configured categories. Each
// category is fetched and normalized independently; a failed category ends
// up empty without affecting the others.
package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/loadout-engine/internal/catalog"
	"github.com/pdiddy/loadout-engine/internal/normalize"
	"github.com/pdiddy/loadout-engine/pkg/types"
)

// ErrNoCategories is returned when not a single category produced records.
// The store keeps its previous catalog.
var ErrNoCategories = errors.New("no category produced records")

// Fetcher returns the raw records of one category page in page order.
type Fetcher interface {
	FetchCategory(ctx context.Context, cfg types.CategoryConfig) ([]types.RawPageRecord, error)
}

// Outcome is the result of one category.
type Outcome struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
	Err   string `json:"error,omitempty"`
}

// Summary holds the counts of a build run.
type Summary struct {
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Records   int       `json:"records"`
	Outcomes  []Outcome `json:"outcomes"`
}

// Total returns the number of categories attempted.
func (s Summary) Total() int {
	return s.Succeeded + s.Failed
}

// HasFailures reports whether any category failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

func (s Summary) String() string {
	return fmt.Sprintf("completed with %d/%d categories succeeded", s.Succeeded, s.Total())
}

// Builder runs catalog builds against a fetcher and commits the result to a
// store.
type Builder struct {
	fetcher     Fetcher
	store       *catalog.Store
	concurrency int
	logger      *zap.Logger

	// Now stamps the built catalog. Defaults to time.Now.
	Now func() time.Time
}

// NewBuilder returns a builder. A concurrency below 1 is treated as 1.
func NewBuilder(f Fetcher, store *catalog.Store, cfg types.BuildConfig, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	n := cfg.Concurrency
	if n < 1 {
		n = 1
	}
	return &Builder{
		fetcher:     f,
		store:       store,
		concurrency: n,
		logger:      logger,
		Now:         time.Now,
	}
}

// ValidateCategories rejects an empty category list, blank modes or
// ranges, modes containing the key separator, and duplicate keys. An
// empty category is persisted under its key alone, so the mode must be
// recoverable by splitting at the first separator.
func ValidateCategories(cats []types.CategoryConfig) error {
	if len(cats) == 0 {
		return errors.New("no categories configured")
	}
	seen := make(map[string]bool, len(cats))
	for i, c := range cats {
		if c.Mode == "" || c.Range == "" {
			return fmt.Errorf("category %d: mode and range are required", i)
		}
		if strings.Contains(c.Mode, types.CategorySeparator) {
			return fmt.Errorf("category %d: mode %q must not contain %q", i, c.Mode, types.CategorySeparator)
		}
		if seen[c.Key()] {
			return fmt.Errorf("duplicate category %q", c.Key())
		}
		seen[c.Key()] = true
	}
	return nil
}

// Build fetches every category, normalizes the records, and commits the
// assembled catalog. Progress lines go to w. When no category succeeds it
// returns ErrNoCategories and leaves the store untouched. A persist
// failure is returned after the new catalog has been installed.
func (b *Builder) Build(ctx context.Context, cats []types.CategoryConfig, w io.Writer) (*types.Catalog, Summary, error) {
	if err := ValidateCategories(cats); err != nil {
		return nil, Summary{}, err
	}

	// Each worker writes only its own slot.
	slots := make([]types.Category, len(cats))
	outcomes := make([]Outcome, len(cats))

	var g errgroup.Group
	g.SetLimit(b.concurrency)
	for i, cfg := range cats {
		i, cfg := i, cfg
		g.Go(func() error {
			slots[i], outcomes[i] = b.buildCategory(ctx, cfg)
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, Summary{}, err
	}

	summary := Summary{Outcomes: outcomes}
	for _, o := range outcomes {
		if o.Err != "" {
			fmt.Fprintf(w, "failed  %s: %s\n", o.Key, o.Err)
			summary.Failed++
			continue
		}
		fmt.Fprintf(w, "ok      %s (%d records)\n", o.Key, o.Count)
		summary.Succeeded++
		summary.Records += o.Count
	}
	fmt.Fprintf(w, "\nBuild summary: %d succeeded, %d failed, %d records (total: %d)\n",
		summary.Succeeded, summary.Failed, summary.Records, summary.Total())

	if summary.Succeeded == 0 {
		b.logger.Error("build produced no records", zap.Int("categories", len(cats)))
		return nil, summary, ErrNoCategories
	}

	c := &types.Catalog{
		Categories: slots,
		BuiltAt:    b.Now().UTC().Truncate(time.Second),
	}
	b.logger.Info(summary.String(),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int("records", summary.Records))

	if err := b.store.Commit(ctx, c); err != nil {
		return c, summary, fmt.Errorf("committing catalog: %w", err)
	}
	return c, summary, nil
}

// buildCategory fetches and normalizes one category. Any failure, including
// an empty page, yields an empty category and a failed outcome.
func (b *Builder) buildCategory(ctx context.Context, cfg types.CategoryConfig) (types.Category, Outcome) {
	cat := types.Category{Mode: cfg.Mode, Range: cfg.Range, Records: []types.WeaponRecord{}}
	out := Outcome{Key: cfg.Key()}
	log := b.logger.With(zap.String("category", out.Key))

	start := time.Now()
	raws, err := b.fetcher.FetchCategory(ctx, cfg)
	if err == nil && len(raws) == 0 {
		err = errors.New("no records on page")
	}
	if err != nil {
		log.Warn("category failed", zap.Error(err))
		out.Err = err.Error()
		return cat, out
	}

	for i, raw := range raws {
		cat.Records = append(cat.Records, normalize.Normalize(raw, i, cfg.Mode, cfg.Range))
	}
	out.Count = len(cat.Records)
	log.Debug("category built",
		zap.Int("records", out.Count),
		zap.Duration("elapsed", time.Since(start)))
	return cat, out
}
