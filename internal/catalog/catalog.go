// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog persists bibliography libraries in a SQLite database so
// that a merged library can be reused as a resolution source.
package catalog

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/bibkeys/internal/library"
	"github.com/pdiddy/bibkeys/pkg/types"
)

// DefaultPath is the catalog file used when none is configured.
const DefaultPath = "bibkeys.db"

// Store manages the catalog database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the catalog at path and creates the schema if it
// does not exist.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating catalog directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS entries (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			key TEXT NOT NULL UNIQUE,
			type TEXT NOT NULL,
			title TEXT,
			authors TEXT,
			editors TEXT,
			issued TEXT,
			fields TEXT,
			origin TEXT,
			imported_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_type ON entries(type)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// ImportSummary holds counts from an import run.
type ImportSummary struct {
	Added   int
	Updated int
}

// Total returns the number of entries written.
func (s ImportSummary) Total() int {
	return s.Added + s.Updated
}

// Import writes every entry of lib in one transaction. Existing keys are
// updated in place and keep their catalog position. origin labels where
// the entries came from (usually a file path). Progress lines go to w.
func (s *Store) Import(ctx context.Context, lib *library.Library, origin string, w io.Writer) (ImportSummary, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entries (key, type, title, authors, editors, issued, fields, origin, imported_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			type=excluded.type, title=excluded.title, authors=excluded.authors,
			editors=excluded.editors, issued=excluded.issued, fields=excluded.fields,
			origin=excluded.origin, imported_at=excluded.imported_at`)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	var summary ImportSummary
	for _, e := range lib.Entries() {
		var exists int
		if err := tx.QueryRowContext(ctx,
			`SELECT count(*) FROM entries WHERE key = ?`, e.Key,
		).Scan(&exists); err != nil {
			return summary, fmt.Errorf("checking entry %s: %w", e.Key, err)
		}

		authorsJSON, _ := json.Marshal(e.Authors)
		editorsJSON, _ := json.Marshal(e.Editors)
		issuedJSON, _ := json.Marshal(e.Issued)
		fieldsJSON, _ := json.Marshal(e.Fields)
		if _, err := stmt.ExecContext(ctx,
			e.Key, e.Type, e.Title,
			string(authorsJSON), string(editorsJSON), string(issuedJSON), string(fieldsJSON),
			origin, now,
		); err != nil {
			return summary, fmt.Errorf("inserting entry %s: %w", e.Key, err)
		}

		if exists > 0 {
			fmt.Fprintf(w, "updated %s\n", e.Key)
			summary.Updated++
		} else {
			fmt.Fprintf(w, "added   %s\n", e.Key)
			summary.Added++
		}
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("committing import: %w", err)
	}
	return summary, nil
}

// ListOptions filters catalog listings.
type ListOptions struct {
	// Query matches keys and titles case-insensitively.
	Query string

	// Type filters by CSL type.
	Type string

	// Limit caps the number of records. Zero means no limit.
	Limit int
}

// Record is a catalog entry with its import metadata.
type Record struct {
	types.Entry
	Origin     string    `json:"origin" yaml:"origin"`
	ImportedAt time.Time `json:"imported_at" yaml:"imported_at"`
}

// List returns catalog records in import order.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Record, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT key, type, title, authors, editors, issued, fields, origin, imported_at
		FROM entries WHERE 1=1`)
	if opts.Query != "" {
		qb.WriteString(` AND (key LIKE ? OR title LIKE ?)`)
		pattern := "%" + opts.Query + "%"
		args = append(args, pattern, pattern)
	}
	if opts.Type != "" {
		qb.WriteString(` AND type = ?`)
		args = append(args, opts.Type)
	}
	qb.WriteString(` ORDER BY rowid`)
	if opts.Limit > 0 {
		qb.WriteString(` LIMIT ?`)
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			r                                     Record
			title, origin, importedAt             sql.NullString
			authors, editors, issued, fieldsValue sql.NullString
		)
		if err := rows.Scan(&r.Key, &r.Type, &title, &authors, &editors, &issued, &fieldsValue, &origin, &importedAt); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		r.Title = title.String
		r.Origin = origin.String
		if err := decodeJSON(authors, &r.Authors); err != nil {
			return nil, fmt.Errorf("decoding authors of %s: %w", r.Key, err)
		}
		if err := decodeJSON(editors, &r.Editors); err != nil {
			return nil, fmt.Errorf("decoding editors of %s: %w", r.Key, err)
		}
		if err := decodeJSON(issued, &r.Issued); err != nil {
			return nil, fmt.Errorf("decoding issued of %s: %w", r.Key, err)
		}
		if err := decodeJSON(fieldsValue, &r.Fields); err != nil {
			return nil, fmt.Errorf("decoding fields of %s: %w", r.Key, err)
		}
		if importedAt.Valid {
			r.ImportedAt, _ = time.Parse(time.RFC3339, importedAt.String)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func decodeJSON(v sql.NullString, dst any) error {
	if !v.Valid || v.String == "" || v.String == "null" {
		return nil
	}
	return json.Unmarshal([]byte(v.String), dst)
}

// Library loads the whole catalog as a Library in import order.
func (s *Store) Library(ctx context.Context) (*library.Library, error) {
	records, err := s.List(ctx, ListOptions{})
	if err != nil {
		return nil, err
	}
	lib := library.New()
	for _, r := range records {
		lib.Push(r.Entry)
	}
	return lib, nil
}

// Source exports the catalog as a structured bibliography source so it can
// be merged with file sources.
func (s *Store) Source(ctx context.Context) (library.Source, error) {
	lib, err := s.Library(ctx)
	if err != nil {
		return library.Source{}, err
	}
	var buf bytes.Buffer
	if err := library.WriteYAML(&buf, lib); err != nil {
		return library.Source{}, fmt.Errorf("exporting catalog: %w", err)
	}
	return library.Source{
		Name:   s.path,
		Text:   buf.String(),
		Format: types.FormatStructured,
	}, nil
}
