// Package store defines the persistence contract the indexer and searcher
// depend on: documents, inverted-index records, and the batched read paths
// used at query time. Concrete backends live in sub-packages.
package store

import (
	"context"
	"time"
)

// Document is a stored text with its storage-assigned identity.
type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// IndexRecord is one (word, document) entry of the inverted index.
type IndexRecord struct {
	Word       string `json:"word"`
	DocumentID string `json:"document_id"`
	Frequency  int    `json:"frequency"`
	Positions  []int  `json:"positions"`
}

// Match is the row returned by a word lookup.
type Match struct {
	DocumentID string
	Frequency  int
}

// DocumentWriter creates documents.
type DocumentWriter interface {
	CreateDocument(ctx context.Context, title, author, content string) (*Document, error)
}

// RecordWriter persists a single index record. Implementations replace an
// existing record with the same (word, document_id).
type RecordWriter interface {
	InsertIndexRecord(ctx context.Context, rec IndexRecord) error
}

// Reader is the read side used by the query resolver.
type Reader interface {
	FindIndexRecordsByWords(ctx context.Context, words []string) ([]Match, error)
	FindDocumentsByIDs(ctx context.Context, ids []string) ([]Document, error)
}

// Store is the full backend contract.
type Store interface {
	DocumentWriter
	RecordWriter
	Reader
	GetDocument(ctx context.Context, id string) (*Document, error)
	// ListDocuments returns every document, newest first.
	ListDocuments(ctx context.Context) ([]Document, error)
	Ping(ctx context.Context) error
	Close() error
}
