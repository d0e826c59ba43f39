// Package memory is an in-process Store. It keeps documents and the inverted
// index in maps guarded by a single RWMutex, which makes it suitable for
// tests, demos and the "memory" driver.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/store"
	apperrors "github.com/Adithya-Monish-Kumar-K/textsearch/pkg/errors"
)

type storedDoc struct {
	doc store.Document
	seq int
}

// Store is a concurrency-safe in-memory store.Store.
type Store struct {
	mu    sync.RWMutex
	docs  map[string]storedDoc
	index map[string][]store.IndexRecord
	seq   int
	now   func() time.Time
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		docs:  make(map[string]storedDoc),
		index: make(map[string][]store.IndexRecord),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) CreateDocument(ctx context.Context, title, author, content string) (*store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageWrite, "creating document", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	doc := store.Document{
		ID:        uuid.NewString(),
		Title:     title,
		Author:    author,
		Content:   content,
		CreatedAt: s.now(),
	}
	s.docs[doc.ID] = storedDoc{doc: doc, seq: s.seq}
	return &doc, nil
}

func (s *Store) InsertIndexRecord(ctx context.Context, rec store.IndexRecord) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(apperrors.ErrStorageWrite, "inserting index record", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[rec.DocumentID]; !ok {
		return apperrors.Wrap(apperrors.ErrStorageWrite, "inserting index record",
			fmt.Errorf("%w: %s", apperrors.ErrDocumentNotFound, rec.DocumentID))
	}
	rec.Positions = append([]int(nil), rec.Positions...)
	postings := s.index[rec.Word]
	for i := range postings {
		if postings[i].DocumentID == rec.DocumentID {
			postings[i] = rec
			return nil
		}
	}
	s.index[rec.Word] = append(postings, rec)
	return nil
}

// FindIndexRecordsByWords returns matches grouped by word in argument order,
// and by insertion order within a word.
func (s *Store) FindIndexRecordsByWords(ctx context.Context, words []string) ([]store.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageRead, "finding index records", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{}, len(words))
	matches := make([]store.Match, 0)
	for _, w := range words {
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		for _, rec := range s.index[w] {
			matches = append(matches, store.Match{DocumentID: rec.DocumentID, Frequency: rec.Frequency})
		}
	}
	return matches, nil
}

func (s *Store) FindDocumentsByIDs(ctx context.Context, ids []string) ([]store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageRead, "finding documents", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]store.Document, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if d, ok := s.docs[id]; ok {
			docs = append(docs, d.doc)
		}
	}
	return docs, nil
}

func (s *Store) GetDocument(ctx context.Context, id string) (*store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageRead, "getting document", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, apperrors.ErrDocumentNotFound)
	}
	doc := d.doc
	return &doc, nil
}

func (s *Store) ListDocuments(ctx context.Context) ([]store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageRead, "listing documents", err)
	}
	s.mu.RLock()
	entries := make([]storedDoc, 0, len(s.docs))
	for _, d := range s.docs {
		entries = append(entries, d)
	}
	s.mu.RUnlock()
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].doc.CreatedAt.Equal(entries[j].doc.CreatedAt) {
			return entries[i].doc.CreatedAt.After(entries[j].doc.CreatedAt)
		}
		return entries[i].seq > entries[j].seq
	})
	docs := make([]store.Document, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, e.doc)
	}
	return docs, nil
}

// Records returns a copy of every stored record for docID, sorted by word.
func (s *Store) Records(docID string) []store.IndexRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.IndexRecord, 0)
	for _, postings := range s.index {
		for _, rec := range postings {
			if rec.DocumentID == docID {
				rec.Positions = append([]int(nil), rec.Positions...)
				out = append(out, rec)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Word < out[j].Word })
	return out
}

func (s *Store) DocCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Close() error {
	return nil
}
