// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strings"
	"time"
)

// Category is one (mode, range) partition of the catalog with its records
// in rank order.
type Category struct {
	Mode    string         `json:"mode" yaml:"mode"`
	Range   string         `json:"range" yaml:"range"`
	Records []WeaponRecord `json:"records" yaml:"records"`
}

// Key returns the category key.
func (c Category) Key() string {
	return CategoryKey(c.Mode, c.Range)
}

// SplitCategoryKey splits a key at the first separator. A key without a
// separator is all mode.
func SplitCategoryKey(key string) (mode, rng string) {
	mode, rng, _ = strings.Cut(key, CategorySeparator)
	return mode, rng
}

// Catalog maps category keys to ordered record lists. Categories keep the
// order in which they were built; that order is the tie-break order for
// search. A Catalog is never mutated once published to a store.
type Catalog struct {
	Categories []Category `json:"categories" yaml:"categories"`

	// BuiltAt is the completion time of the build that produced the
	// catalog, UTC and truncated to whole seconds. Zero for an empty catalog.
	BuiltAt time.Time `json:"built_at" yaml:"built_at"`
}

// EmptyCatalog returns a catalog with no categories.
func EmptyCatalog() *Catalog {
	return &Catalog{Categories: []Category{}}
}

// TotalCount returns the number of records across all categories.
func (c *Catalog) TotalCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, cat := range c.Categories {
		n += len(cat.Records)
	}
	return n
}

// IsEmpty reports whether the catalog holds no records at all.
func (c *Catalog) IsEmpty() bool {
	return c.TotalCount() == 0
}

// Get returns the category with the given key.
func (c *Catalog) Get(key string) (Category, bool) {
	if c == nil {
		return Category{}, false
	}
	for _, cat := range c.Categories {
		if cat.Key() == key {
			return cat, true
		}
	}
	return Category{}, false
}

// Keys returns the category keys in catalog order.
func (c *Catalog) Keys() []string {
	if c == nil {
		return nil
	}
	keys := make([]string, len(c.Categories))
	for i, cat := range c.Categories {
		keys[i] = cat.Key()
	}
	return keys
}
