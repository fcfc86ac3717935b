// Package sqlite is a genview.Store over SQLite. Entities of every kind
// share one table and are stored msgpack-encoded, so any struct works
// without a schema of its own.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/pthm/genview"
	"github.com/pthm/genview/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS entities (
	kind TEXT NOT NULL,
	id   TEXT NOT NULL,
	data BLOB NOT NULL,
	PRIMARY KEY (kind, id)
);
`

// Open opens (creating if needed) the database at path and ensures the
// entities table exists. Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	dsn := "file:" + path
	if path == ":memory:" {
		dsn = ":memory:"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	// One connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: create schema: %w", err)
	}
	return db, nil
}

// Store persists entities of type E under kind.
type Store[E store.Entity] struct {
	db   *sql.DB
	kind string
	new  func() E
}

var _ genview.Store[store.Entity] = (*Store[store.Entity])(nil)

// New creates a store for kind. newEntity allocates the value rows are
// decoded into.
func New[E store.Entity](db *sql.DB, kind string, newEntity func() E) (*Store[E], error) {
	if db == nil {
		return nil, errors.New("sqlite: nil db")
	}
	if kind == "" {
		return nil, errors.New("sqlite: empty kind")
	}
	if newEntity == nil {
		return nil, errors.New("sqlite: nil entity constructor")
	}
	return &Store[E]{db: db, kind: kind, new: newEntity}, nil
}

// Get returns the entity with id.
func (s *Store[E]) Get(ctx context.Context, id string) (E, bool, error) {
	var zero E
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM entities WHERE kind = ? AND id = ?`, s.kind, id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("sqlite: get %s %q: %w", s.kind, id, err)
	}

	e, err := s.decode(data)
	if err != nil {
		return zero, false, err
	}
	return e, true, nil
}

// All returns every entity of the kind in insertion order.
func (s *Store[E]) All(ctx context.Context) ([]E, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM entities WHERE kind = ? ORDER BY rowid`, s.kind)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list %s: %w", s.kind, err)
	}
	defer rows.Close()

	var out []E
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("sqlite: scan %s: %w", s.kind, err)
		}
		e, err := s.decode(data)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list %s: %w", s.kind, err)
	}
	if out == nil {
		out = []E{}
	}
	return out, nil
}

// Save upserts e, assigning an identifier when it has none. Updates keep
// the entity's position in All.
func (s *Store[E]) Save(ctx context.Context, e E) error {
	if store.IsNil(e) {
		return store.ErrNilEntity
	}
	store.EnsureID(e)

	data, err := msgpack.Marshal(e)
	if err != nil {
		return fmt.Errorf("sqlite: encode %s: %w", s.kind, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO entities (kind, id, data) VALUES (?, ?, ?)
		ON CONFLICT (kind, id) DO UPDATE SET data = excluded.data`,
		s.kind, e.EntityID(), data)
	if err != nil {
		return fmt.Errorf("sqlite: save %s %q: %w", s.kind, e.EntityID(), err)
	}
	return nil
}

// Delete removes e. Deleting an absent entity is not an error.
func (s *Store[E]) Delete(ctx context.Context, e E) error {
	if store.IsNil(e) {
		return store.ErrNilEntity
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM entities WHERE kind = ? AND id = ?`, s.kind, e.EntityID())
	if err != nil {
		return fmt.Errorf("sqlite: delete %s %q: %w", s.kind, e.EntityID(), err)
	}
	return nil
}

func (s *Store[E]) decode(data []byte) (E, error) {
	e := s.new()
	if err := msgpack.Unmarshal(data, e); err != nil {
		var zero E
		return zero, fmt.Errorf("sqlite: decode %s: %w", s.kind, err)
	}
	return e, nil
}
