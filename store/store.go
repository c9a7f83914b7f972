// ABOUTME: SQLite-backed resource store for the local backend: agents, tools, frameworks and swarms.
// ABOUTME: Each row is a JSON document keyed by (kind, id); new ids are ULIDs.
package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"
)

var (
	ErrNotFound    = errors.New("resource not found")
	ErrExists      = errors.New("resource already exists")
	ErrUnknownKind = errors.New("unknown resource kind")
)

// Kind names a resource collection.
type Kind string

const (
	Agents     Kind = "agents"
	Tools      Kind = "tools"
	Frameworks Kind = "frameworks"
	Swarms     Kind = "swarms"
)

// Kinds lists every collection.
func Kinds() []Kind {
	return []Kind{Agents, Tools, Frameworks, Swarms}
}

func (k Kind) check() error {
	if slices.Contains(Kinds(), k) {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
}

// Document is one stored resource. "id" is always set on documents the
// store returns.
type Document map[string]any

const timeLayout = time.RFC3339Nano

// Store persists documents in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewID returns a fresh ULID string.
func NewID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// Open opens or creates the database at path, creating its directory.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// :memory: databases are per connection.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS resources (
			kind TEXT NOT NULL,
			id TEXT NOT NULL,
			body TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (kind, id)
		);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create stores doc under a new ULID, or under doc["id"] when the caller
// supplies one. The stored document is returned.
func (s *Store) Create(ctx context.Context, kind Kind, doc Document) (Document, error) {
	if err := kind.check(); err != nil {
		return nil, err
	}
	out := clone(doc)
	id, _ := out["id"].(string)
	if id == "" {
		id = NewID()
	}
	out["id"] = id

	body, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode %s %s: %w", kind, id, err)
	}
	ts := s.now().Format(timeLayout)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO resources (kind, id, body, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		string(kind), id, string(body), ts, ts)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, fmt.Errorf("%w: %s %s", ErrExists, kind, id)
		}
		return nil, fmt.Errorf("insert %s: %w", kind, err)
	}
	return out, nil
}

// Get returns one document.
func (s *Store) Get(ctx context.Context, kind Kind, id string) (Document, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM resources WHERE kind = ? AND id = ?`, string(kind), id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query %s %s: %w", kind, id, err)
	}
	return decode(body)
}

// Update replaces the document body. The id cannot change.
func (s *Store) Update(ctx context.Context, kind Kind, id string, doc Document) (Document, error) {
	if err := kind.check(); err != nil {
		return nil, err
	}
	out := clone(doc)
	out["id"] = id

	body, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode %s %s: %w", kind, id, err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE resources SET body = ?, updated_at = ? WHERE kind = ? AND id = ?`,
		string(body), s.now().Format(timeLayout), string(kind), id)
	if err != nil {
		return nil, fmt.Errorf("update %s %s: %w", kind, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
	}
	return out, nil
}

// Delete removes one document.
func (s *Store) Delete(ctx context.Context, kind Kind, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM resources WHERE kind = ? AND id = ?`, string(kind), id)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
	}
	return nil
}

// List returns every document of kind in insertion order.
func (s *Store) List(ctx context.Context, kind Kind) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT body FROM resources WHERE kind = ? ORDER BY rowid ASC`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", kind, err)
	}
	defer func() { _ = rows.Close() }()

	docs := []Document{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", kind, err)
		}
		doc, err := decode(body)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// UpdatedAt returns when the document was last written.
func (s *Store) UpdatedAt(ctx context.Context, kind Kind, id string) (time.Time, error) {
	var ts string
	err := s.db.QueryRowContext(ctx,
		`SELECT updated_at FROM resources WHERE kind = ? AND id = ?`, string(kind), id).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("query %s %s: %w", kind, id, err)
	}
	return time.Parse(timeLayout, ts)
}

func decode(body string) (Document, error) {
	var doc Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

func clone(doc Document) Document {
	out := make(Document, len(doc)+1)
	for k, v := range doc {
		out[k] = v
	}
	return out
}
