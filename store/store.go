// Package store keeps a library of named levels in a sqlite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/milk9111/fanbuilder/levels"
)

var ErrNotFound = errors.New("store: level not found")

const schema = `
CREATE TABLE IF NOT EXISTS levels (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	theme TEXT NOT NULL DEFAULT '',
	document TEXT NOT NULL,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// Entry describes a stored level without its contents.
type Entry struct {
	ID        uuid.UUID
	Name      string
	Theme     string
	UpdatedAt time.Time
}

type Store struct {
	db *sql.DB
}

// Open creates or opens the library at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores doc under name, replacing an existing level of that name but
// keeping its id.
func (s *Store) Save(ctx context.Context, name string, doc levels.Document) (Entry, error) {
	if name == "" {
		return Entry{}, errors.New("store: level name is empty")
	}
	data, err := levels.Encode(doc)
	if err != nil {
		return Entry{}, err
	}
	const query = `
	INSERT INTO levels (id, name, theme, document, updated_at)
	VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(name) DO UPDATE SET
		theme = excluded.theme,
		document = excluded.document,
		updated_at = CURRENT_TIMESTAMP;
	`
	if _, err := s.db.ExecContext(ctx, query, uuid.NewString(), name, doc.Theme, string(data)); err != nil {
		return Entry{}, fmt.Errorf("store: save %q: %w", name, err)
	}
	return s.entry(ctx, name)
}

func (s *Store) entry(ctx context.Context, name string) (Entry, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, name, theme, updated_at FROM levels WHERE name = ?", name)
	e, err := scanEntry(row)
	if err != nil {
		return Entry{}, fmt.Errorf("store: lookup %q: %w", name, err)
	}
	return e, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		e  Entry
		id string
	)
	if err := row.Scan(&id, &e.Name, &e.Theme, &e.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Entry{}, fmt.Errorf("bad id %q: %w", id, err)
	}
	e.ID = parsed
	return e, nil
}

// Load returns the level stored under name.
func (s *Store) Load(ctx context.Context, name string) (levels.Document, error) {
	return s.load(ctx, "SELECT document FROM levels WHERE name = ?", name)
}

// LoadID returns the level with the given id.
func (s *Store) LoadID(ctx context.Context, id uuid.UUID) (levels.Document, error) {
	return s.load(ctx, "SELECT document FROM levels WHERE id = ?", id.String())
}

func (s *Store) load(ctx context.Context, query string, key string) (levels.Document, error) {
	var data string
	if err := s.db.QueryRowContext(ctx, query, key).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return levels.Document{}, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return levels.Document{}, fmt.Errorf("store: load %s: %w", key, err)
	}
	return levels.Decode([]byte(data))
}

// List returns every stored level ordered by name.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, theme, updated_at FROM levels ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("store: list: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	return out, nil
}

// Delete removes the level stored under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM levels WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("store: delete %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}
