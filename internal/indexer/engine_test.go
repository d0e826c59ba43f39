package indexer

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/store"
	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/store/memory"
	apperrors "github.com/Adithya-Monish-Kumar-K/textsearch/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/textsearch/pkg/metrics"
)

// flakyStore fails document creation for listed titles and record writes for
// listed words.
type flakyStore struct {
	*memory.Store
	failTitles map[string]bool
	failWords  map[string]bool
	attempts   []string
}

func (f *flakyStore) CreateDocument(ctx context.Context, title, author, content string) (*store.Document, error) {
	if f.failTitles[title] {
		return nil, apperrors.Wrap(apperrors.ErrStorageWrite, "inserting document", errors.New("disk full"))
	}
	return f.Store.CreateDocument(ctx, title, author, content)
}

func (f *flakyStore) InsertIndexRecord(ctx context.Context, rec store.IndexRecord) error {
	f.attempts = append(f.attempts, rec.Word)
	if f.failWords[rec.Word] {
		return apperrors.Wrap(apperrors.ErrStorageWrite, "upserting index record", errors.New("timeout"))
	}
	return f.Store.InsertIndexRecord(ctx, rec)
}

type fakeLocker struct {
	acquired int
	released int
	err      error
}

func (l *fakeLocker) Acquire(context.Context) (func(context.Context) error, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.acquired++
	return func(context.Context) error {
		l.released++
		return nil
	}, nil
}

type recordingTracker struct {
	mu     sync.Mutex
	events []any
}

func (r *recordingTracker) Track(event any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func TestEngine_IngestDocument(t *testing.T) {
	mem := memory.New()
	e := NewEngine(mem)

	report, err := e.IngestDocument(context.Background(), NewDocument{
		Title:   "Cats",
		Author:  "Anon",
		Content: "The cat sat on the mat. The cat ran.",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, report.Terms)
	assert.Equal(t, 4, report.Indexed)
	assert.Equal(t, 0, report.Failed)

	records := mem.Records(report.Document.ID)
	require.Len(t, records, 4)
	assert.Equal(t, store.IndexRecord{Word: "cat", DocumentID: report.Document.ID, Frequency: 2, Positions: []int{1, 7}}, records[0])
	assert.Equal(t, "mat", records[1].Word)
	assert.Equal(t, "ran", records[2].Word)
	assert.Equal(t, "sat", records[3].Word)
}

func TestEngine_FrequencySumMatchesFilteredTokens(t *testing.T) {
	mem := memory.New()
	e := NewEngine(mem)
	content := `It is a truth universally acknowledged, that a single man in possession of a
	good fortune, must be in want of a wife. However little known the feelings or views of
	such a man may be on his first entering a neighbourhood, this truth is so well fixed.`

	report, err := e.IngestDocument(context.Background(), NewDocument{Title: "P&P", Content: content})
	require.NoError(t, err)

	total := 0
	for _, r := range mem.Records(report.Document.ID) {
		assert.Equal(t, r.Frequency, len(r.Positions))
		total += r.Frequency
	}
	assert.Equal(t, len(tokenizer.Tokenize(content)), total)
}

func TestEngine_RecordFailuresDoNotAbortDocument(t *testing.T) {
	fs := &flakyStore{Store: memory.New(), failWords: map[string]bool{"sat": true, "mat": true}}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	e := NewEngine(fs, WithMetrics(m))

	report, err := e.IngestDocument(context.Background(), NewDocument{Title: "Cats", Content: "The cat sat on the mat. The cat ran."})
	require.NoError(t, err)

	assert.Len(t, fs.attempts, 4)
	assert.Equal(t, 2, report.Indexed)
	assert.Equal(t, 2, report.Failed)
	words := make([]string, 0)
	for _, r := range fs.Records(report.Document.ID) {
		words = append(words, r.Word)
	}
	assert.Equal(t, []string{"cat", "ran"}, words)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.IndexRecordWritesTotal.WithLabelValues("error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.IndexRecordWritesTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentWritesTotal.WithLabelValues("ok")))
}

func TestEngine_DocumentFailureSkipsDocument(t *testing.T) {
	fs := &flakyStore{Store: memory.New(), failTitles: map[string]bool{"Broken": true}}
	e := NewEngine(fs)

	_, err := e.IngestDocument(context.Background(), NewDocument{Title: "Broken", Content: "rabbit"})
	assert.ErrorIs(t, err, apperrors.ErrStorageWrite)
	assert.Empty(t, fs.attempts)
	assert.Equal(t, 0, fs.DocCount())
}

func TestEngine_IngestAllIsSequentialAndSkipsFailures(t *testing.T) {
	fs := &flakyStore{Store: memory.New(), failTitles: map[string]bool{"Broken": true}}
	locker := &fakeLocker{}
	tracker := &recordingTracker{}
	e := NewEngine(fs, WithLocker(locker), WithTracker(tracker))

	summary, err := e.IngestAll(context.Background(), []NewDocument{
		{Title: "One", Content: "dog"},
		{Title: "Broken", Content: "dog dog"},
		{Title: "Three", Content: "dog dog dog cat"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Skipped)
	require.Len(t, summary.Reports, 2)
	assert.Equal(t, "One", summary.Reports[0].Document.Title)
	assert.Equal(t, "Three", summary.Reports[1].Document.Title)
	assert.Equal(t, []string{"dog"}, fs.attempts[:1])
	assert.Len(t, fs.attempts, 3)
	assert.Equal(t, 1, locker.acquired)
	assert.Equal(t, 1, locker.released)

	require.Len(t, tracker.events, 2)
	ev, ok := tracker.events[1].(analytics.IndexEvent)
	require.True(t, ok)
	assert.Equal(t, summary.Reports[1].Document.ID, ev.DocumentID)
	assert.Equal(t, 2, ev.UniqueTerms)
}

func TestEngine_IngestAllLockHeld(t *testing.T) {
	locker := &fakeLocker{err: apperrors.ErrLockHeld}
	e := NewEngine(memory.New(), WithLocker(locker))

	_, err := e.IngestAll(context.Background(), []NewDocument{{Title: "One", Content: "dog"}})
	assert.ErrorIs(t, err, apperrors.ErrLockHeld)
}

func TestEngine_ReindexReplacesRecords(t *testing.T) {
	mem := memory.New()
	e := NewEngine(mem)
	ctx := context.Background()

	report, err := e.IngestDocument(ctx, NewDocument{Title: "Dogs", Content: "dog dog cat"})
	require.NoError(t, err)

	again, err := e.ReindexDocument(ctx, report.Document.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, again.Indexed)

	records := mem.Records(report.Document.ID)
	require.Len(t, records, 2)
	assert.Equal(t, "cat", records[0].Word)
	assert.Equal(t, 2, records[1].Frequency)

	_, err = e.ReindexDocument(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrDocumentNotFound)
}
