package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure Go SQLite driver, no CGO
)

// MetadataStore persists chunks and ingest state in SQLite. The ingest
// command writes it once; serving processes read the full chunk set at
// startup and on reload. WAL mode keeps a concurrent reader and writer
// from blocking each other.
type MetadataStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	closed bool
}

const metadataSchema = `
CREATE TABLE IF NOT EXISTS chunks (
	ord        INTEGER PRIMARY KEY,
	id         TEXT NOT NULL UNIQUE,
	doc_id     TEXT NOT NULL,
	article_no TEXT NOT NULL DEFAULT '',
	pages      TEXT NOT NULL DEFAULT '[]',
	text       TEXT NOT NULL,
	norm_text  TEXT NOT NULL,
	roles      TEXT NOT NULL DEFAULT '[]'
);
CREATE TABLE IF NOT EXISTS ingest_state (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// OpenMetadataStore opens (or creates) the metadata database at path.
func OpenMetadataStore(path string) (*MetadataStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open metadata db: %w", err)
	}
	if _, err := db.Exec(metadataSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &MetadataStore{db: db, path: path}, nil
}

// ReplaceChunks swaps the full chunk set in one transaction. Ingest is
// whole-corpus, so partial updates never happen.
func (m *MetadataStore) ReplaceChunks(ctx context.Context, chunks []Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("store is closed")
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks`); err != nil {
		return fmt.Errorf("clear chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (ord, id, doc_id, article_no, pages, text, norm_text, roles)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range chunks {
		pages, err := json.Marshal(c.Pages)
		if err != nil {
			return fmt.Errorf("marshal pages for %s: %w", c.ID, err)
		}
		roles, err := json.Marshal(c.Roles)
		if err != nil {
			return fmt.Errorf("marshal roles for %s: %w", c.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, i, c.ID, c.DocID, c.ArticleNo, string(pages), c.Text, c.NormText, string(roles)); err != nil {
			return fmt.Errorf("insert chunk %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadChunks reads the chunk set in ordinal order.
func (m *MetadataStore) LoadChunks(ctx context.Context) ([]Chunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("store is closed")
	}

	rows, err := m.db.QueryContext(ctx, `
		SELECT id, doc_id, article_no, pages, text, norm_text, roles
		FROM chunks ORDER BY ord`)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var chunks []Chunk
	for rows.Next() {
		var c Chunk
		var pages, roles string
		if err := rows.Scan(&c.ID, &c.DocID, &c.ArticleNo, &pages, &c.Text, &c.NormText, &roles); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		if err := json.Unmarshal([]byte(pages), &c.Pages); err != nil {
			return nil, fmt.Errorf("decode pages for %s: %w", c.ID, err)
		}
		if err := json.Unmarshal([]byte(roles), &c.Roles); err != nil {
			return nil, fmt.Errorf("decode roles for %s: %w", c.ID, err)
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}
	return chunks, nil
}

// SetState stores an ingest state value (embedder model, ingest time).
func (m *MetadataStore) SetState(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("store is closed")
	}

	_, err := m.db.ExecContext(ctx, `
		INSERT INTO ingest_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("set state %s: %w", key, err)
	}
	return nil
}

// GetState reads an ingest state value. Missing keys return "" without
// error.
func (m *MetadataStore) GetState(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return "", fmt.Errorf("store is closed")
	}

	var value string
	err := m.db.QueryRowContext(ctx, `SELECT value FROM ingest_state WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get state %s: %w", key, err)
	}
	return value, nil
}

// Close closes the database. Idempotent.
func (m *MetadataStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	return m.db.Close()
}
