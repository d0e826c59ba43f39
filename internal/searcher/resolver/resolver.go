// Package resolver answers a query: it looks up every query word in one
// batched store call, scores documents by summed frequency, and fetches the
// ranked documents. Store failures never surface as a hard failure; the
// caller gets an empty result and an error wrapping errors.ErrStorageRead.
package resolver

import (
	"context"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/store"
	apperrors "github.com/Adithya-Monish-Kumar-K/textsearch/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/textsearch/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/textsearch/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/textsearch/pkg/tracing"
)

// Tracker receives search events.
type Tracker interface {
	Track(event any)
}

type ScoredDocument struct {
	Document store.Document `json:"document"`
	Score    int            `json:"score"`
}

type Result struct {
	Query     string           `json:"query"`
	Words     []string         `json:"words"`
	Documents []ScoredDocument `json:"documents"`
}

func emptyResult(plan *parser.QueryPlan) *Result {
	return &Result{
		Query:     plan.RawQuery,
		Words:     plan.Words,
		Documents: []ScoredDocument{},
	}
}

type Resolver struct {
	reader  store.Reader
	parser  *parser.Parser
	tracker Tracker
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*Resolver)

// WithParser overrides the default verbatim query parser.
func WithParser(p *parser.Parser) Option {
	return func(r *Resolver) { r.parser = p }
}

func WithTracker(t Tracker) Option {
	return func(r *Resolver) { r.tracker = t }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

func New(reader store.Reader, opts ...Option) *Resolver {
	r := &Resolver{
		reader: reader,
		parser: parser.New(tokenizer.QueryOptions),
		logger: slog.Default().With("component", "resolver"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Search returns every document matching at least one query word, highest
// score first. An empty query returns an empty result without touching the
// store.
func (r *Resolver) Search(ctx context.Context, query string) (*Result, error) {
	start := time.Now()
	plan := r.parser.Parse(query)
	if plan.IsEmpty() {
		r.observe(ctx, plan, "empty_query", 0, start)
		return emptyResult(plan), nil
	}

	spanCtx, span := tracing.StartChildSpan(ctx, "resolver.lookup")
	span.SetAttr("words", len(plan.Words))
	matches, err := r.reader.FindIndexRecordsByWords(spanCtx, plan.Words)
	span.End()
	if err != nil {
		return r.fail(ctx, plan, "looking up query words", err, start)
	}

	_, span = tracing.StartChildSpan(ctx, "resolver.rank")
	ranked := ranker.Rank(matches)
	span.SetAttr("matches", len(matches))
	span.SetAttr("documents", len(ranked))
	span.End()
	if len(ranked) == 0 {
		r.observe(ctx, plan, "zero_result", 0, start)
		return emptyResult(plan), nil
	}

	spanCtx, span = tracing.StartChildSpan(ctx, "resolver.fetch")
	docs, err := r.reader.FindDocumentsByIDs(spanCtx, ranker.IDs(ranked))
	span.SetAttr("fetched", len(docs))
	span.End()
	if err != nil {
		return r.fail(ctx, plan, "fetching ranked documents", err, start)
	}

	result := emptyResult(plan)
	result.Documents = reorder(ranked, docs)
	resultType := "hit"
	if len(result.Documents) == 0 {
		resultType = "zero_result"
	}
	r.observe(ctx, plan, resultType, len(result.Documents), start)
	return result, nil
}

// reorder arranges docs, which the store returns in no particular order, by
// the ranked order. Ranked IDs the store did not return are dropped.
func reorder(ranked []ranker.ScoredDoc, docs []store.Document) []ScoredDocument {
	byID := make(map[string]store.Document, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}
	out := make([]ScoredDocument, 0, len(ranked))
	for _, r := range ranked {
		d, ok := byID[r.DocID]
		if !ok {
			continue
		}
		out = append(out, ScoredDocument{Document: d, Score: r.Score})
	}
	return out
}

func (r *Resolver) fail(ctx context.Context, plan *parser.QueryPlan, op string, err error, start time.Time) (*Result, error) {
	logger.FromContext(ctx).Warn("search degraded to empty result",
		"component", "resolver",
		"query", plan.RawQuery,
		"op", op,
		"error", err,
	)
	r.observe(ctx, plan, "error", 0, start)
	return emptyResult(plan), apperrors.Wrap(apperrors.ErrStorageRead, op, err)
}

func (r *Resolver) observe(ctx context.Context, plan *parser.QueryPlan, resultType string, returned int, start time.Time) {
	latency := time.Since(start)
	if r.metrics != nil {
		r.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
		r.metrics.SearchLatency.Observe(latency.Seconds())
		r.metrics.SearchResultsCount.Observe(float64(returned))
	}
	if resultType != "error" {
		logger.FromContext(ctx).Debug("query resolved",
			"component", "resolver",
			"query", plan.RawQuery,
			"words", plan.Words,
			"results", returned,
			"latency_ms", latency.Milliseconds(),
		)
	}
	if r.tracker == nil || resultType == "empty_query" {
		return
	}
	eventType := analytics.EventSearch
	switch resultType {
	case "zero_result":
		eventType = analytics.EventZeroResult
	case "error":
		eventType = analytics.EventSearchFail
	}
	r.tracker.Track(analytics.SearchEvent{
		Type:      eventType,
		Query:     plan.RawQuery,
		Words:     plan.Words,
		Returned:  returned,
		LatencyMs: latency.Milliseconds(),
		Timestamp: time.Now().UTC(),
		RequestID: logger.RequestID(ctx),
	})
}
