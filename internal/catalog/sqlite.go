// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/loadout-engine/pkg/types"
)

// SQLiteSnapshot stores the catalog in a SQLite database. The database
// holds exactly one snapshot; Save replaces it in one transaction.
type SQLiteSnapshot struct {
	db *sql.DB
}

// NewSQLiteSnapshot opens or creates the database at path and its schema.
func NewSQLiteSnapshot(path string) (*SQLiteSnapshot, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteSnapshot{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *SQLiteSnapshot) Close() error {
	return s.db.Close()
}

func (s *SQLiteSnapshot) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS snapshot (
			build_id TEXT PRIMARY KEY,
			built_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			key TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			mode TEXT NOT NULL,
			weapon_range TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS records (
			category_key TEXT NOT NULL REFERENCES categories(key),
			rank INTEGER NOT NULL,
			gun TEXT NOT NULL,
			class TEXT NOT NULL,
			image TEXT,
			updated TEXT NOT NULL,
			PRIMARY KEY (category_key, rank)
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save replaces the stored snapshot with c.
func (s *SQLiteSnapshot) Save(ctx context.Context, c *types.Catalog) error {
	if c == nil {
		c = types.EmptyCatalog()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM records`,
		`DELETE FROM categories`,
		`DELETE FROM snapshot`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clearing snapshot: %w", err)
		}
	}

	builtAt := ""
	if !c.BuiltAt.IsZero() {
		builtAt = c.BuiltAt.UTC().Format(TimeLayout)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshot (build_id, built_at) VALUES (?, ?)`,
		uuid.NewString(), builtAt,
	); err != nil {
		return fmt.Errorf("inserting snapshot row: %w", err)
	}

	for pos, cat := range c.Categories {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (key, position, mode, weapon_range) VALUES (?, ?, ?, ?)`,
			cat.Key(), pos, cat.Mode, cat.Range,
		); err != nil {
			return fmt.Errorf("inserting category %s: %w", cat.Key(), err)
		}

		for _, rec := range cat.Records {
			class := rec.Attachments
			if class == nil {
				class = []string{}
			}
			classJSON, err := json.Marshal(class)
			if err != nil {
				return fmt.Errorf("encoding attachments: %w", err)
			}
			var image sql.NullString
			if rec.Image != nil {
				image = sql.NullString{String: *rec.Image, Valid: true}
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO records (category_key, rank, gun, class, image, updated)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				cat.Key(), rec.Rank, rec.Name, string(classJSON), image, rec.Updated,
			); err != nil {
				return fmt.Errorf("inserting record %s/%d: %w", cat.Key(), rec.Rank, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

// Load reads the stored snapshot. An empty database yields ErrNoSnapshot.
func (s *SQLiteSnapshot) Load(ctx context.Context) (*types.Catalog, error) {
	var builtAt string
	err := s.db.QueryRowContext(ctx, `SELECT built_at FROM snapshot LIMIT 1`).Scan(&builtAt)
	if err == sql.ErrNoRows {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot row: %w", err)
	}

	c := types.EmptyCatalog()
	if builtAt != "" {
		t, err := time.Parse(TimeLayout, builtAt)
		if err != nil {
			return nil, fmt.Errorf("%w: built_at %q: %v", ErrSnapshotCorrupt, builtAt, err)
		}
		c.BuiltAt = t
	}

	rows, err := s.db.QueryContext(ctx, `SELECT mode, weapon_range FROM categories ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	for rows.Next() {
		cat := types.Category{Records: []types.WeaponRecord{}}
		if err := rows.Scan(&cat.Mode, &cat.Range); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		c.Categories = append(c.Categories, cat)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}

	for i := range c.Categories {
		recs, err := s.loadRecords(ctx, c.Categories[i])
		if err != nil {
			return nil, err
		}
		c.Categories[i].Records = recs
	}

	if err := validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *SQLiteSnapshot) loadRecords(ctx context.Context, cat types.Category) ([]types.WeaponRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT rank, gun, class, image, updated FROM records
		 WHERE category_key = ? ORDER BY rank`, cat.Key())
	if err != nil {
		return nil, fmt.Errorf("querying records of %s: %w", cat.Key(), err)
	}
	defer rows.Close()

	recs := []types.WeaponRecord{}
	for rows.Next() {
		rec := types.WeaponRecord{Mode: cat.Mode, Range: cat.Range}
		var class string
		var image sql.NullString
		if err := rows.Scan(&rec.Rank, &rec.Name, &class, &image, &rec.Updated); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		if err := json.Unmarshal([]byte(class), &rec.Attachments); err != nil {
			return nil, fmt.Errorf("%w: %s rank %d class: %v", ErrSnapshotCorrupt, cat.Key(), rec.Rank, err)
		}
		if rec.Attachments == nil {
			rec.Attachments = []string{}
		}
		if image.Valid {
			img := image.String
			rec.Image = &img
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// BuildID returns the id of the stored snapshot, or "" when none exists.
func (s *SQLiteSnapshot) BuildID(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT build_id FROM snapshot LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading build id: %w", err)
	}
	return id, nil
}
