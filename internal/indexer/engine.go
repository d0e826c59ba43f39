// Package indexer drives ingestion: it creates each document through the
// store, builds its inverted-index records and writes them one by one.
// Record writes are independent; a failed write is logged and counted but
// never aborts the rest of the document or the run.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/store"
	"github.com/Adithya-Monish-Kumar-K/textsearch/pkg/metrics"
)

// Store is the subset of store.Store the engine writes through.
type Store interface {
	store.DocumentWriter
	store.RecordWriter
	GetDocument(ctx context.Context, id string) (*store.Document, error)
}

// Locker serialises ingestion runs across processes.
type Locker interface {
	Acquire(ctx context.Context) (release func(context.Context) error, err error)
}

// Tracker receives ingestion events.
type Tracker interface {
	Track(event any)
}

// NewDocument is an ingestion request.
type NewDocument struct {
	Title   string `json:"title" yaml:"title"`
	Author  string `json:"author" yaml:"author"`
	Content string `json:"content" yaml:"content"`
}

// IngestReport describes one ingested document.
type IngestReport struct {
	Document *store.Document
	Terms    int
	Indexed  int
	Failed   int
}

// IngestSummary describes an IngestAll run.
type IngestSummary struct {
	Reports []IngestReport
	Skipped int
}

// Engine ingests documents into a Store.
type Engine struct {
	store   Store
	locker  Locker
	tracker Tracker
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLocker makes IngestAll hold l for the whole run.
func WithLocker(l Locker) Option {
	return func(e *Engine) { e.locker = l }
}

// WithTracker publishes an IndexEvent per ingested document.
func WithTracker(t Tracker) Option {
	return func(e *Engine) { e.tracker = t }
}

// WithMetrics records ingestion counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func NewEngine(s Store, opts ...Option) *Engine {
	e := &Engine{
		store:  s,
		logger: slog.Default().With("component", "indexer"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// IngestDocument creates the document and writes one index record per
// distinct term. It only returns an error when the document itself could not
// be created, in which case nothing was written.
func (e *Engine) IngestDocument(ctx context.Context, nd NewDocument) (*IngestReport, error) {
	start := time.Now()
	doc, err := e.store.CreateDocument(ctx, nd.Title, nd.Author, nd.Content)
	if err != nil {
		if e.metrics != nil {
			e.metrics.DocumentWritesTotal.WithLabelValues("error").Inc()
		}
		return nil, fmt.Errorf("creating document %q: %w", nd.Title, err)
	}
	if e.metrics != nil {
		e.metrics.DocumentWritesTotal.WithLabelValues("ok").Inc()
	}
	report := e.writeRecords(ctx, doc, index.BuildForDocument(doc.ID, doc.Content))
	e.logger.Info("document ingested",
		"doc_id", doc.ID,
		"title", doc.Title,
		"unique_terms", report.Terms,
		"indexed", report.Indexed,
		"failed", report.Failed,
	)
	e.track(report, time.Since(start))
	return report, nil
}

// IngestAll ingests docs one after another. A document that cannot be
// created is skipped. The returned error is non-nil only if the run lock
// could not be taken.
func (e *Engine) IngestAll(ctx context.Context, docs []NewDocument) (*IngestSummary, error) {
	if e.locker != nil {
		release, err := e.locker.Acquire(ctx)
		if err != nil {
			return nil, fmt.Errorf("acquiring ingestion lock: %w", err)
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				e.logger.Error("releasing ingestion lock", "error", err)
			}
		}()
	}
	summary := &IngestSummary{Reports: make([]IngestReport, 0, len(docs))}
	for _, nd := range docs {
		report, err := e.IngestDocument(ctx, nd)
		if err != nil {
			e.logger.Error("skipping document", "title", nd.Title, "error", err)
			summary.Skipped++
			continue
		}
		summary.Reports = append(summary.Reports, *report)
	}
	e.logger.Info("ingestion complete",
		"documents", len(summary.Reports),
		"skipped", summary.Skipped,
	)
	return summary, nil
}

// ReindexDocument rebuilds the records of an existing document. Stores
// upsert on (word, document_id), so this replaces rather than duplicates.
func (e *Engine) ReindexDocument(ctx context.Context, docID string) (*IngestReport, error) {
	doc, err := e.store.GetDocument(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("loading document %s: %w", docID, err)
	}
	report := e.writeRecords(ctx, doc, index.BuildForDocument(doc.ID, doc.Content))
	e.logger.Info("document reindexed",
		"doc_id", doc.ID,
		"unique_terms", report.Terms,
		"indexed", report.Indexed,
		"failed", report.Failed,
	)
	return report, nil
}

func (e *Engine) writeRecords(ctx context.Context, doc *store.Document, records []store.IndexRecord) *IngestReport {
	report := &IngestReport{Document: doc, Terms: len(records)}
	for _, rec := range records {
		if err := e.store.InsertIndexRecord(ctx, rec); err != nil {
			report.Failed++
			e.logger.Error("failed to index word",
				"doc_id", doc.ID,
				"word", rec.Word,
				"error", err,
			)
			if e.metrics != nil {
				e.metrics.IndexRecordWritesTotal.WithLabelValues("error").Inc()
			}
			continue
		}
		report.Indexed++
		if e.metrics != nil {
			e.metrics.IndexRecordWritesTotal.WithLabelValues("ok").Inc()
		}
	}
	if e.metrics != nil {
		e.metrics.DocsIndexedTotal.Inc()
	}
	return report
}

func (e *Engine) track(report *IngestReport, latency time.Duration) {
	if e.tracker == nil {
		return
	}
	e.tracker.Track(analytics.IndexEvent{
		Type:        analytics.EventIndexDoc,
		DocumentID:  report.Document.ID,
		UniqueTerms: report.Terms,
		Indexed:     report.Indexed,
		Failed:      report.Failed,
		SizeBytes:   len(report.Document.Content),
		LatencyMs:   latency.Milliseconds(),
		Timestamp:   time.Now().UTC(),
	})
}
