package templates

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"
	_ "modernc.org/sqlite"
)

// Entry is a stored template.
type Entry struct {
	Title     string
	Source    string
	Hash      string
	UpdatedAt time.Time
}

// SQLiteStore keeps templates in a local SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the template database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS templates (
	title TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	hash TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Hash returns the content hash stored next to a template source.
func Hash(source string) string {
	sum := blake2b.Sum256([]byte(source))
	return fmt.Sprintf("blake2b:%x", sum)
}

// Put stores a template. It reports false when an identical source was
// already stored and nothing was written.
func (s *SQLiteStore) Put(ctx context.Context, title, source string) (bool, error) {
	title = NormalizeTitle(title)
	if title == "" {
		return false, fmt.Errorf("empty template title")
	}
	hash := Hash(source)

	var existing string
	err := s.db.QueryRowContext(ctx, `SELECT hash FROM templates WHERE title = ?`, title).Scan(&existing)
	switch {
	case err == nil && existing == hash:
		return false, nil
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return false, fmt.Errorf("looking up %s: %w", title, err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO templates (title, source, hash, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT(title) DO UPDATE SET source = excluded.source, hash = excluded.hash, updated_at = excluded.updated_at`,
		title, source, hash, s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return false, fmt.Errorf("storing %s: %w", title, err)
	}
	return true, nil
}

// Get returns a stored template.
func (s *SQLiteStore) Get(ctx context.Context, title string) (*Entry, error) {
	title = NormalizeTitle(title)
	var e Entry
	var updated string
	err := s.db.QueryRowContext(ctx,
		`SELECT title, source, hash, updated_at FROM templates WHERE title = ?`, title,
	).Scan(&e.Title, &e.Source, &e.Hash, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, title)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", title, err)
	}
	if e.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return nil, fmt.Errorf("reading %s: bad timestamp %q: %w", title, updated, err)
	}
	return &e, nil
}

// Fetch implements Source.
func (s *SQLiteStore) Fetch(ctx context.Context, title string) (string, error) {
	e, err := s.Get(ctx, title)
	if err != nil {
		return "", err
	}
	return e.Source, nil
}

// List returns stored titles starting with the normalized prefix, or all
// titles for an empty prefix, sorted.
func (s *SQLiteStore) List(ctx context.Context, prefix string) ([]string, error) {
	pattern := "%"
	if prefix != "" {
		pattern = likeEscape(NormalizeTitle(prefix)) + "%"
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT title FROM templates WHERE title LIKE ? ESCAPE '\' ORDER BY title`, pattern)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		titles = append(titles, t)
	}
	return titles, rows.Err()
}

// Delete removes a stored template.
func (s *SQLiteStore) Delete(ctx context.Context, title string) error {
	title = NormalizeTitle(title)
	res, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE title = ?`, title)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", title, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, title)
	}
	return nil
}

func likeEscape(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c == '%' || c == '_' || c == '\\' {
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
