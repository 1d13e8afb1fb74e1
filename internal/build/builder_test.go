// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package build

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/pdiddy/loadout-engine/internal/catalog"
	"github.com/pdiddy/loadout-engine/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// --- test helpers ---

// fakeFetcher serves canned pages keyed by category key.
type fakeFetcher struct {
	pages map[string][]types.RawPageRecord
	errs  map[string]error
	delay time.Duration

	mu       sync.Mutex
	calls    []string
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (f *fakeFetcher) FetchCategory(ctx context.Context, cfg types.CategoryConfig) ([]types.RawPageRecord, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, cfg.Key())
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := f.errs[cfg.Key()]; err != nil {
		return nil, err
	}
	return f.pages[cfg.Key()], nil
}

type memSnapshot struct {
	saved   *types.Catalog
	saveErr error
}

func (m *memSnapshot) Save(_ context.Context, c *types.Catalog) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = c
	return nil
}

func (m *memSnapshot) Load(context.Context) (*types.Catalog, error) {
	if m.saved == nil {
		return nil, catalog.ErrNoSnapshot
	}
	return m.saved, nil
}

func page(names ...string) []types.RawPageRecord {
	out := make([]types.RawPageRecord, len(names))
	for i, n := range names {
		out[i] = types.RawPageRecord{
			Name:  n,
			Lines: []string{"Muzzle Brake", "Muzzle", "Updated on Aug 1, 2026"},
		}
	}
	return out
}

func threeCategories() []types.CategoryConfig {
	return []types.CategoryConfig{
		{Mode: "Resurgence", Range: "Long Range"},
		{Mode: "Resurgence", Range: "Close Range"},
		{Mode: "Resurgence", Range: "Sniper"},
	}
}

var fixedNow = time.Date(2026, 10, 17, 9, 30, 12, 987654321, time.FixedZone("CEST", 2*3600))

func newTestBuilder(f Fetcher, snap catalog.Snapshotter, concurrency int) (*Builder, *catalog.Store) {
	store := catalog.NewStore(snap, zap.NewNop())
	b := NewBuilder(f, store, types.BuildConfig{Concurrency: concurrency}, zap.NewNop())
	b.Now = func() time.Time { return fixedNow }
	return b, store
}

// --- tests ---

func TestBuildIsolatesFailures(t *testing.T) {
	f := &fakeFetcher{
		pages: map[string][]types.RawPageRecord{
			"Resurgence_Long Range": page("AK-74", "Kilo 141"),
			"Resurgence_Sniper":     page("Kar98k", "", "HDR"),
		},
		errs: map[string]error{
			"Resurgence_Close Range": errors.New("tab not found"),
		},
	}
	snap := &memSnapshot{}
	b, store := newTestBuilder(f, snap, 3)

	var buf bytes.Buffer
	c, summary, err := b.Build(context.Background(), threeCategories(), &buf)
	require.NoError(t, err)

	assert.Equal(t, []string{"Resurgence_Long Range", "Resurgence_Close Range", "Resurgence_Sniper"}, c.Keys())
	assert.Len(t, c.Categories[0].Records, 2)
	assert.Empty(t, c.Categories[1].Records)
	assert.NotNil(t, c.Categories[1].Records)
	assert.Len(t, c.Categories[2].Records, 3)
	assert.Equal(t, "Unknown Weapon 2", c.Categories[2].Records[1].Name)

	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 5, summary.Records)
	assert.True(t, summary.HasFailures())
	assert.Equal(t, "completed with 2/3 categories succeeded", summary.String())
	assert.Equal(t, "tab not found", summary.Outcomes[1].Err)

	assert.Same(t, c, store.Current())
	assert.Same(t, c, snap.saved)

	out := buf.String()
	assert.Contains(t, out, "failed  Resurgence_Close Range: tab not found")
	assert.Contains(t, out, "ok      Resurgence_Sniper (3 records)")
	assert.Contains(t, out, "Build summary: 2 succeeded, 1 failed, 5 records (total: 3)")
}

func TestBuildRanksAreContiguous(t *testing.T) {
	f := &fakeFetcher{pages: map[string][]types.RawPageRecord{
		"Resurgence_Long Range":  page("a", "b", "c", "d"),
		"Resurgence_Close Range": page("e"),
		"Resurgence_Sniper":      page("f", "g"),
	}}
	b, _ := newTestBuilder(f, nil, 2)

	c, _, err := b.Build(context.Background(), threeCategories(), &bytes.Buffer{})
	require.NoError(t, err)

	for _, cat := range c.Categories {
		for i, rec := range cat.Records {
			assert.Equal(t, i+1, rec.Rank, "%s record %d", cat.Key(), i)
			assert.Equal(t, cat.Key(), rec.Key())
		}
	}
}

func TestBuildStampsTruncatedUTC(t *testing.T) {
	f := &fakeFetcher{pages: map[string][]types.RawPageRecord{"Resurgence_Sniper": page("Kar98k")}}
	b, _ := newTestBuilder(f, nil, 1)

	c, _, err := b.Build(context.Background(), []types.CategoryConfig{{Mode: "Resurgence", Range: "Sniper"}}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 17, 7, 30, 12, 0, time.UTC), c.BuiltAt)
	assert.Equal(t, time.UTC, c.BuiltAt.Location())
}

func TestBuildZeroSuccessRetainsPreviousCatalog(t *testing.T) {
	f := &fakeFetcher{errs: map[string]error{
		"Resurgence_Long Range": errors.New("timeout"),
		"Resurgence_Sniper":     errors.New("timeout"),
	}}
	snap := &memSnapshot{}
	b, store := newTestBuilder(f, snap, 2)

	previous := &types.Catalog{Categories: []types.Category{{
		Mode: "Verdansk", Range: "Sniper",
		Records: []types.WeaponRecord{{Rank: 1, Mode: "Verdansk", Range: "Sniper", Name: "HDR"}},
	}}}
	store.Replace(previous)

	// Close Range returns an empty page, which also counts as failure.
	c, summary, err := b.Build(context.Background(), threeCategories(), &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrNoCategories)
	assert.Nil(t, c)
	assert.Equal(t, 3, summary.Failed)
	assert.Same(t, previous, store.Current())
	assert.Nil(t, snap.saved)
}

func TestBuildPersistFailureKeepsSwap(t *testing.T) {
	f := &fakeFetcher{pages: map[string][]types.RawPageRecord{"Resurgence_Sniper": page("Kar98k")}}
	b, store := newTestBuilder(f, &memSnapshot{saveErr: errors.New("read-only file system")}, 1)

	c, _, err := b.Build(context.Background(), []types.CategoryConfig{{Mode: "Resurgence", Range: "Sniper"}}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only file system")
	require.NotNil(t, c)
	assert.Same(t, c, store.Current())
}

func TestBuildRespectsConcurrencyLimit(t *testing.T) {
	var cats []types.CategoryConfig
	pages := map[string][]types.RawPageRecord{}
	for _, r := range []string{"A", "B", "C", "D", "E", "F"} {
		cfg := types.CategoryConfig{Mode: "Multiplayer", Range: r}
		cats = append(cats, cfg)
		pages[cfg.Key()] = page("gun " + r)
	}
	f := &fakeFetcher{pages: pages, delay: 20 * time.Millisecond}
	b, _ := newTestBuilder(f, nil, 2)

	c, summary, err := b.Build(context.Background(), cats, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 6, summary.Succeeded)
	assert.LessOrEqual(t, f.maxSeen.Load(), int32(2))

	// Output order follows configuration, not completion order.
	keys := c.Keys()
	for i, cfg := range cats {
		assert.Equal(t, cfg.Key(), keys[i])
	}
}

func TestBuildCancelled(t *testing.T) {
	f := &fakeFetcher{
		pages: map[string][]types.RawPageRecord{"Resurgence_Sniper": page("Kar98k")},
		delay: time.Second,
	}
	b, store := newTestBuilder(f, nil, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, _, err := b.Build(ctx, threeCategories(), &bytes.Buffer{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, store.Current().IsEmpty())
}

func TestValidateCategories(t *testing.T) {
	tests := []struct {
		name    string
		cats    []types.CategoryConfig
		wantErr string
	}{
		{"ok", threeCategories(), ""},
		{"empty", nil, "no categories"},
		{"blank range", []types.CategoryConfig{{Mode: "Resurgence"}}, "mode and range are required"},
		{"separator in mode", []types.CategoryConfig{{Mode: "Battle_Royale", Range: "SMG"}}, "must not contain"},
		{"separator in range", []types.CategoryConfig{{Mode: "Multiplayer", Range: "Marksman_Rifle"}}, ""},
		{"duplicate", []types.CategoryConfig{
			{Mode: "Resurgence", Range: "Sniper", URL: "a"},
			{Mode: "Resurgence", Range: "Sniper", URL: "b"},
		}, "duplicate category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCategories(tt.cats)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBuiltCatalogSurvivesSnapshotRoundTrip(t *testing.T) {
	cats := []types.CategoryConfig{
		{Mode: "Resurgence", Range: "Sniper"},
		{Mode: "Multiplayer", Range: "Marksman_Rifle"},
		{Mode: "Battle Royale", Range: "SMG"},
	}
	f := &fakeFetcher{
		pages: map[string][]types.RawPageRecord{"Resurgence_Sniper": page("Kar98k")},
		errs: map[string]error{
			"Multiplayer_Marksman_Rifle": errors.New("timeout"),
			"Battle Royale_SMG":          errors.New("timeout"),
		},
	}
	snap := catalog.NewFileSnapshot(filepath.Join(t.TempDir(), "all_guns_database.json"))
	b, _ := newTestBuilder(f, snap, 2)

	built, _, err := b.Build(context.Background(), cats, &bytes.Buffer{})
	require.NoError(t, err)

	loaded, err := snap.Load(context.Background())
	require.NoError(t, err)
	if diff := cmp.Diff(built, loaded); diff != "" {
		t.Errorf("reloaded catalog differs (-built +loaded):\n%s", diff)
	}
	require.Len(t, loaded.Categories, 3)
	assert.Equal(t, "Battle Royale", loaded.Categories[2].Mode)
	assert.Equal(t, "SMG", loaded.Categories[2].Range)
}

func TestBuildRejectsInvalidConfigBeforeFetching(t *testing.T) {
	f := &fakeFetcher{}
	b, _ := newTestBuilder(f, nil, 1)
	cats := append(threeCategories(), types.CategoryConfig{Mode: "Resurgence", Range: "Sniper"})

	_, _, err := b.Build(context.Background(), cats, &bytes.Buffer{})
	require.Error(t, err)
	assert.Empty(t, f.calls)
}
