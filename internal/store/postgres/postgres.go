// Package postgres implements store.Store on PostgreSQL via lib/pq. Positions
// are stored as INTEGER[] and word lookups are a single "= ANY($1)" query.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/store"
	apperrors "github.com/Adithya-Monish-Kumar-K/textsearch/pkg/errors"
	pkgpostgres "github.com/Adithya-Monish-Kumar-K/textsearch/pkg/postgres"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	title      TEXT NOT NULL,
	author     TEXT NOT NULL DEFAULT '',
	content    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents (created_at DESC);

CREATE TABLE IF NOT EXISTS inverted_index (
	id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	word        TEXT NOT NULL,
	document_id UUID NOT NULL REFERENCES documents (id) ON DELETE CASCADE,
	frequency   INTEGER NOT NULL,
	positions   INTEGER[] NOT NULL DEFAULT '{}',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (word, document_id)
);
CREATE INDEX IF NOT EXISTS idx_inverted_index_word ON inverted_index (word);
`

// Store is a PostgreSQL-backed store.Store.
type Store struct {
	client  *pkgpostgres.Client
	timeout time.Duration
	logger  *slog.Logger
}

var _ store.Store = (*Store)(nil)

// New wraps an open client. queryTimeout bounds every statement; zero means
// no bound beyond the caller's context.
func New(client *pkgpostgres.Client, queryTimeout time.Duration) *Store {
	return &Store{
		client:  client,
		timeout: queryTimeout,
		logger:  slog.Default().With("component", "postgres-store"),
	}
}

// Migrate creates the tables and indexes if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	err := s.client.InTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, schema)
		return err
	})
	if err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	s.logger.Info("schema ready")
	return nil
}

func (s *Store) CreateDocument(ctx context.Context, title, author, content string) (*store.Document, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	doc := store.Document{Title: title, Author: author, Content: content}
	err := s.client.DB.QueryRowContext(ctx,
		`INSERT INTO documents (title, author, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`, title, author, content).Scan(&doc.ID, &doc.CreatedAt)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageWrite, "inserting document", err)
	}
	return &doc, nil
}

func (s *Store) InsertIndexRecord(ctx context.Context, rec store.IndexRecord) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	_, err := s.client.DB.ExecContext(ctx,
		`INSERT INTO inverted_index (word, document_id, frequency, positions)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (word, document_id)
		DO UPDATE SET frequency = EXCLUDED.frequency, positions = EXCLUDED.positions`,
		rec.Word, rec.DocumentID, rec.Frequency, pq.Array(toInt64(rec.Positions)))
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorageWrite, "upserting index record", err)
	}
	return nil
}

func (s *Store) FindIndexRecordsByWords(ctx context.Context, words []string) ([]store.Match, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	rows, err := s.client.DB.QueryContext(ctx,
		`SELECT document_id, frequency FROM inverted_index WHERE word = ANY($1)`,
		pq.Array(words))
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
	valid := validUUIDs(ids)
	if len(valid) == 0 {
		return []store.Document{}, nil
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	rows, err := s.client.DB.QueryContext(ctx,
		`SELECT id, title, author, content, created_at FROM documents WHERE id = ANY($1::uuid[])`,
		pq.Array(valid))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageRead, "querying documents", err)
	}
	defer rows.Close()
	return scanDocuments(rows)
}

func (s *Store) GetDocument(ctx context.Context, id string) (*store.Document, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("document %s: %w", id, apperrors.ErrDocumentNotFound)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	var doc store.Document
	err := s.client.DB.QueryRowContext(ctx,
		`SELECT id, title, author, content, created_at FROM documents WHERE id = $1`, id).
		Scan(&doc.ID, &doc.Title, &doc.Author, &doc.Content, &doc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", id, apperrors.ErrDocumentNotFound)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageRead, "querying document", err)
	}
	return &doc, nil
}

func (s *Store) ListDocuments(ctx context.Context) ([]store.Document, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	rows, err := s.client.DB.QueryContext(ctx,
		`SELECT id, title, author, content, created_at FROM documents ORDER BY created_at DESC`)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageRead, "listing documents", err)
	}
	defer rows.Close()
	return scanDocuments(rows)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.DB.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.client.Close()
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
		var d store.Document
		if err := rows.Scan(&d.ID, &d.Title, &d.Author, &d.Content, &d.CreatedAt); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrStorageRead, "scanning document", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageRead, "iterating documents", err)
	}
	return docs, nil
}

func toInt64(positions []int) []int64 {
	out := make([]int64, len(positions))
	for i, p := range positions {
		out[i] = int64(p)
	}
	return out
}

func validUUIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			out = append(out, id)
		}
	}
	return out
}
