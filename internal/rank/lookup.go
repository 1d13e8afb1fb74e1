// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"strings"
	"time"

	"github.com/pdiddy/loadout-engine/pkg/types"
)

// Lookup finds a weapon inside one known category. A case-insensitive exact
// name match wins; otherwise the best-ranked record whose name contains the
// fragment is returned.
func Lookup(c *types.Catalog, mode, rng, fragment string) (types.WeaponRecord, Reason) {
	cat, ok := c.Get(types.CategoryKey(mode, rng))
	if !ok {
		return types.WeaponRecord{}, ReasonUnknownCategory
	}

	f := fold(fragment)
	for _, rec := range cat.Records {
		if fold(rec.Name) == f {
			return rec, ReasonOK
		}
	}
	for _, rec := range cat.Records {
		if strings.Contains(fold(rec.Name), f) {
			return rec, ReasonOK
		}
	}
	return types.WeaponRecord{}, ReasonNotFound
}

// Top returns the first n records of a category in rank order.
func Top(c *types.Catalog, mode, rng string, n int) ([]types.WeaponRecord, Reason) {
	if n < 1 {
		return []types.WeaponRecord{}, ReasonInvalidLimit
	}
	cat, ok := c.Get(types.CategoryKey(mode, rng))
	if !ok {
		return []types.WeaponRecord{}, ReasonUnknownCategory
	}
	if len(cat.Records) == 0 {
		return []types.WeaponRecord{}, ReasonNoMatch
	}
	if n > len(cat.Records) {
		n = len(cat.Records)
	}
	out := make([]types.WeaponRecord, n)
	copy(out, cat.Records[:n])
	return out, ReasonOK
}

// CategoryCount is the size of one category.
type CategoryCount struct {
	Key   string `json:"key"`
	Mode  string `json:"mode"`
	Range string `json:"range"`
	Count int    `json:"count"`
}

// CatalogStats summarizes a catalog.
type CatalogStats struct {
	TotalCount int             `json:"total_guns"`
	BuiltAt    time.Time       `json:"built_at"`
	Categories []CategoryCount `json:"categories"`
}

// Stats returns per-category record counts in catalog order.
func Stats(c *types.Catalog) CatalogStats {
	s := CatalogStats{Categories: []CategoryCount{}}
	if c == nil {
		return s
	}
	s.TotalCount = c.TotalCount()
	s.BuiltAt = c.BuiltAt
	for _, cat := range c.Categories {
		s.Categories = append(s.Categories, CategoryCount{
			Key:   cat.Key(),
			Mode:  cat.Mode,
			Range: cat.Range,
			Count: len(cat.Records),
		})
	}
	return s
}
