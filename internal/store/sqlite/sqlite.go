// Package sqlite implements store.Store on a single SQLite file using the
// pure-Go modernc.org/sqlite driver. Positions are stored as a JSON array.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/store"
	apperrors "github.com/Adithya-Monish-Kumar-K/textsearch/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	author     TEXT NOT NULL DEFAULT '',
	content    TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents (created_at DESC);

CREATE TABLE IF NOT EXISTS inverted_index (
	word        TEXT NOT NULL,
	document_id TEXT NOT NULL REFERENCES documents (id) ON DELETE CASCADE,
	frequency   INTEGER NOT NULL,
	positions   TEXT NOT NULL DEFAULT '[]',
	PRIMARY KEY (word, document_id)
);
`

// Store is a SQLite-backed store.Store.
type Store struct {
	db      *sql.DB
	path    string
	timeout time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

var _ store.Store = (*Store)(nil)

var pragmas = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA synchronous = NORMAL",
}

// Open creates the database file (and its directory) if needed and applies
// the schema.
func Open(path string, queryTimeout time.Duration) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating sqlite directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	// One long-lived connection: SQLite serialises writers and the pragmas
	// below are per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying sqlite schema: %w", err)
	}
	s := &Store{
		db:      db,
		path:    path,
		timeout: queryTimeout,
		now:     func() time.Time { return time.Now().UTC() },
		logger:  slog.Default().With("component", "sqlite-store"),
	}
	s.logger.Info("sqlite store opened", "path", path)
	return s, nil
}

func (s *Store) CreateDocument(ctx context.Context, title, author, content string) (*store.Document, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	doc := store.Document{
		ID:        uuid.NewString(),
		Title:     title,
		Author:    author,
		Content:   content,
		CreatedAt: s.now(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, title, author, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		doc.ID, doc.Title, doc.Author, doc.Content, doc.CreatedAt.UnixNano())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageWrite, "inserting document", err)
	}
	return &doc, nil
}

func (s *Store) InsertIndexRecord(ctx context.Context, rec store.IndexRecord) error {
	positions, err := json.Marshal(rec.Positions)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorageWrite, "encoding positions", err)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO inverted_index (word, document_id, frequency, positions)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (word, document_id)
		DO UPDATE SET frequency = excluded.frequency, positions = excluded.positions`,
		rec.Word, rec.DocumentID, rec.Frequency, string(positions))
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorageWrite, "upserting index record", err)
	}
	return nil
}

func (s *Store) FindIndexRecordsByWords(ctx context.Context, words []string) ([]store.Match, error) {
	if len(words) == 0 {
		return []store.Match{}, nil
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	query := `SELECT document_id, frequency FROM inverted_index WHERE word IN (` + placeholders(len(words)) + `)`
	rows, err := s.db.QueryContext(ctx, query, toArgs(words)...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageRead, "querying index records", err)
	}
	defer rows.Close()
	matches := make([]store.Match, 0)
	for rows.Next() {
		var m store.Match
		if err := rows.Scan(&m.DocumentID, &m.Frequency); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrStorageRead, "scanning index record", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageRead, "iterating index records", err)
	}
	return matches, nil
}

func (s *Store) FindDocumentsByIDs(ctx context.Context, ids []string) ([]store.Document, error) {
	if len(ids) == 0 {
		return []store.Document{}, nil
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	query := `SELECT id, title, author, content, created_at FROM documents WHERE id IN (` + placeholders(len(ids)) + `)`
	rows, err := s.db.QueryContext(ctx, query, toArgs(ids)...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageRead, "querying documents", err)
	}
	defer rows.Close()
	return scanDocuments(rows)
}

func (s *Store) GetDocument(ctx context.Context, id string) (*store.Document, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	var (
		doc     store.Document
		created int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, author, content, created_at FROM documents WHERE id = ?`, id).
		Scan(&doc.ID, &doc.Title, &doc.Author, &doc.Content, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", id, apperrors.ErrDocumentNotFound)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageRead, "querying document", err)
	}
	doc.CreatedAt = time.Unix(0, created).UTC()
	return &doc, nil
}

func (s *Store) ListDocuments(ctx context.Context) ([]store.Document, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, author, content, created_at FROM documents ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageRead, "listing documents", err)
	}
	defer rows.Close()
	return scanDocuments(rows)
}

// Positions returns the stored positions for (word, docID).
func (s *Store) Positions(ctx context.Context, word, docID string) ([]int, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT positions FROM inverted_index WHERE word = ? AND document_id = ?`, word, docID).Scan(&raw)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageRead, "querying positions", err)
	}
	var positions []int
	if err := json.Unmarshal([]byte(raw), &positions); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageRead, "decoding positions", err)
	}
	return positions, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func scanDocuments(rows *sql.Rows) ([]store.Document, error) {
	docs := make([]store.Document, 0)
	for rows.Next() {
		var (
			d       store.Document
			created int64
		)
		if err := rows.Scan(&d.ID, &d.Title, &d.Author, &d.Content, &created); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrStorageRead, "scanning document", err)
		}
		d.CreatedAt = time.Unix(0, created).UTC()
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageRead, "iterating documents", err)
	}
	return docs, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func toArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}
