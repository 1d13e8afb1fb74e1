// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/loadout-engine/pkg/types"
)

// TimeLayout is the snapshot's last_updated format.
const TimeLayout = "2006-01-02 15:04:05 UTC"

// FileSnapshot stores the catalog as one JSON document.
type FileSnapshot struct {
	path string
}

// NewFileSnapshot returns a snapshotter for the JSON file at path.
func NewFileSnapshot(path string) *FileSnapshot {
	return &FileSnapshot{path: path}
}

// Path returns the snapshot file path.
func (f *FileSnapshot) Path() string {
	return f.path
}

// Save writes c to a temp file next to the snapshot and renames it into
// place, so readers of the file never see a partial document.
func (f *FileSnapshot) Save(ctx context.Context, c *types.Catalog) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := EncodeSnapshot(&buf, c); err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(buf.Bytes())
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing snapshot: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Load reads and validates the snapshot. A missing file yields
// ErrNoSnapshot; anything unreadable or inconsistent yields
// ErrSnapshotCorrupt.
func (f *FileSnapshot) Load(ctx context.Context) (*types.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoSnapshot, f.path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", f.path, err)
	}
	return DecodeSnapshot(data)
}

// snapshotDoc is the on-disk layout.
type snapshotDoc struct {
	LastUpdated string            `json:"last_updated"`
	TotalGuns   int               `json:"total_guns"`
	Categories  orderedCategories `json:"categories"`
}

// EncodeSnapshot writes c as an indented snapshot document to w.
func EncodeSnapshot(w io.Writer, c *types.Catalog) error {
	if c == nil {
		c = types.EmptyCatalog()
	}
	doc := snapshotDoc{
		TotalGuns:  c.TotalCount(),
		Categories: orderedCategories(c.Categories),
	}
	if !c.BuiltAt.IsZero() {
		doc.LastUpdated = c.BuiltAt.UTC().Format(TimeLayout)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// DecodeSnapshot parses and validates a snapshot document.
func DecodeSnapshot(data []byte) (*types.Catalog, error) {
	var doc snapshotDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing json: %v", ErrSnapshotCorrupt, err)
	}

	c := &types.Catalog{Categories: []types.Category(doc.Categories)}
	if c.Categories == nil {
		c.Categories = []types.Category{}
	}
	if doc.LastUpdated != "" {
		t, err := time.Parse(TimeLayout, doc.LastUpdated)
		if err != nil {
			return nil, fmt.Errorf("%w: last_updated %q: %v", ErrSnapshotCorrupt, doc.LastUpdated, err)
		}
		c.BuiltAt = t
	}

	if err := validate(c); err != nil {
		return nil, err
	}
	if got := c.TotalCount(); got != doc.TotalGuns {
		return nil, fmt.Errorf("%w: total_guns is %d but categories hold %d records",
			ErrSnapshotCorrupt, doc.TotalGuns, got)
	}
	return c, nil
}

// validate checks that every record sits under its own category key and
// carries a name.
func validate(c *types.Catalog) error {
	for _, cat := range c.Categories {
		key := cat.Key()
		for i, rec := range cat.Records {
			if rec.Name == "" {
				return fmt.Errorf("%w: %s record %d has no gun name", ErrSnapshotCorrupt, key, i)
			}
			if rec.Key() != key {
				return fmt.Errorf("%w: record %q is %s but listed under %s",
					ErrSnapshotCorrupt, rec.Name, rec.Key(), key)
			}
		}
	}
	return nil
}

// orderedCategories codes the catalog as a JSON object keyed by category
// key while keeping catalog order, which a Go map would lose.
type orderedCategories []types.Category

func (o orderedCategories) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, cat := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(cat.Key())
		if err != nil {
			return nil, err
		}
		records := cat.Records
		if records == nil {
			records = []types.WeaponRecord{}
		}
		recs, err := json.Marshal(records)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(recs)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (o *orderedCategories) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("categories: expected object, got %v", tok)
	}

	out := orderedCategories{}
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("categories: expected key, got %v", tok)
		}
		if seen[key] {
			return fmt.Errorf("categories: duplicate key %q", key)
		}
		seen[key] = true

		var records []types.WeaponRecord
		if err := dec.Decode(&records); err != nil {
			return fmt.Errorf("categories[%q]: %w", key, err)
		}
		for _, rec := range records {
			if rec.Key() != key {
				return fmt.Errorf("categories[%q]: record %q belongs to %s", key, rec.Name, rec.Key())
			}
		}
		out = append(out, categoryFromKey(key, records))
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*o = out
	return nil
}

// categoryFromKey rebuilds a category from its key and records. Mode and
// range come from the first record when there is one; an empty list splits
// the key at the first separator.
func categoryFromKey(key string, records []types.WeaponRecord) types.Category {
	if records == nil {
		records = []types.WeaponRecord{}
	}
	for i := range records {
		if records[i].Attachments == nil {
			records[i].Attachments = []string{}
		}
	}
	mode, rng := types.SplitCategoryKey(key)
	if len(records) > 0 {
		mode, rng = records[0].Mode, records[0].Range
	}
	return types.Category{Mode: mode, Range: rng, Records: records}
}
