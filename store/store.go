// Package store keeps a library of saved layouts in sqlite.
//
// Documents are stored as zstd-compressed JSON layouts keyed by uuid.
package store

import (
	"bytes"
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/gogpu/vmap"
)

// ErrNotFound is returned for an unknown layout id or an empty library.
var ErrNotFound = errors.New("store: layout not found")

//go:embed schema.sql
var schema string

// Layout is one saved layout. Document holds the uncompressed JSON layout
// and is empty in List results.
type Layout struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Surfaces int       `json:"surfaces"`
	Created  time.Time `json:"created"`
	Document []byte    `json:"-"`
}

// Restore replaces m's surfaces with the layout.
func (l Layout) Restore(m *vmap.Mapper) (vmap.LoadResult, error) {
	return m.ReadLayout(bytes.NewReader(l.Document), vmap.FormatJSON)
}

// Store is a sqlite-backed layout library. It is safe for concurrent use.
type Store struct {
	db  *sql.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
	now func() time.Time
}

// Open opens or creates the library at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("store: mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, enc: enc, dec: dec, now: time.Now}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	s.dec.Close()
	return s.db.Close()
}

// Save records the current layout of m under name. It must run on the
// goroutine that owns m.
func (s *Store) Save(ctx context.Context, name string, m *vmap.Mapper) (Layout, error) {
	var buf bytes.Buffer
	if err := m.WriteLayout(&buf, vmap.FormatJSON); err != nil {
		return Layout{}, fmt.Errorf("store: encode layout: %w", err)
	}

	l := Layout{
		ID:       uuid.New(),
		Name:     name,
		Surfaces: m.Len(),
		Created:  s.now().UTC(),
		Document: buf.Bytes(),
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO layouts (id, name, surfaces, created_at, document)
        VALUES (?, ?, ?, ?, ?)
    `, l.ID.String(), l.Name, l.Surfaces, l.Created.UnixNano(), s.enc.EncodeAll(l.Document, nil))
	if err != nil {
		return Layout{}, fmt.Errorf("store: insert layout: %w", err)
	}
	vmap.Logger().Info("store: layout saved", "id", l.ID, "name", name, "surfaces", l.Surfaces)
	return l, nil
}

// Get returns the layout with the given id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (Layout, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, name, surfaces, created_at, document
        FROM layouts
        WHERE id = ?
    `, id.String())
	return s.scanDocument(row)
}

// Latest returns the most recently saved layout.
func (s *Store) Latest(ctx context.Context) (Layout, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, name, surfaces, created_at, document
        FROM layouts
        ORDER BY created_at DESC, rowid DESC
        LIMIT 1
    `)
	return s.scanDocument(row)
}

// List returns every layout, newest first, without documents.
func (s *Store) List(ctx context.Context) ([]Layout, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, name, surfaces, created_at
        FROM layouts
        ORDER BY created_at DESC, rowid DESC
    `)
	if err != nil {
		return nil, fmt.Errorf("store: list layouts: %w", err)
	}
	defer rows.Close()

	var out []Layout
	for rows.Next() {
		var (
			l       Layout
			id      string
			created int64
		)
		if err := rows.Scan(&id, &l.Name, &l.Surfaces, &created); err != nil {
			return nil, fmt.Errorf("store: list layouts: %w", err)
		}
		if l.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("store: list layouts: %w", err)
		}
		l.Created = time.Unix(0, created).UTC()
		out = append(out, l)
	}
	return out, rows.Err()
}

// Delete removes the layout with the given id.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM layouts WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("store: delete layout: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete layout: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("store: delete %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Store) scanDocument(row *sql.Row) (Layout, error) {
	var (
		l       Layout
		id      string
		created int64
		blob    []byte
	)
	if err := row.Scan(&id, &l.Name, &l.Surfaces, &created, &blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Layout{}, ErrNotFound
		}
		return Layout{}, fmt.Errorf("store: read layout: %w", err)
	}
	var err error
	if l.ID, err = uuid.Parse(id); err != nil {
		return Layout{}, fmt.Errorf("store: read layout: %w", err)
	}
	if l.Document, err = s.dec.DecodeAll(blob, nil); err != nil {
		return Layout{}, fmt.Errorf("store: decompress %s: %w", id, err)
	}
	l.Created = time.Unix(0, created).UTC()
	return l, nil
}
