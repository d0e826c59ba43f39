package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/searcher/resolver"
	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/store"
	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/store/memory"
	apperrors "github.com/Adithya-Monish-Kumar-K/textsearch/pkg/errors"
)

type failingReader struct{}

func (failingReader) FindIndexRecordsByWords(context.Context, []string) ([]store.Match, error) {
	return nil, errors.New("db down")
}

func (failingReader) FindDocumentsByIDs(context.Context, []string) ([]store.Document, error) {
	return nil, errors.New("db down")
}

type failingLister struct{}

func (failingLister) ListDocuments(context.Context) ([]store.Document, error) {
	return nil, apperrors.Wrap(apperrors.ErrStorageRead, "listing documents", errors.New("db down"))
}

func seeded(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.New()
	e := indexer.NewEngine(s)
	for _, d := range []indexer.NewDocument{
		{Title: "One", Author: "A", Content: "A dog sat by the fire."},
		{Title: "Three", Author: "B", Content: "The dog, the dog and the other dog."},
	} {
		_, err := e.IngestDocument(context.Background(), d)
		require.NoError(t, err)
	}
	return s
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) SearchResponse {
	t.Helper()
	var resp SearchResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestSearch_RanksResults(t *testing.T) {
	s := seeded(t)
	h := New(resolver.New(s), s, 150)

	rec := httptest.NewRecorder()
	h.Search(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search?q=Dog", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	resp := decode(t, rec)
	assert.Equal(t, "Dog", resp.Query)
	assert.Equal(t, []string{"dog"}, resp.Words)
	require.Equal(t, 2, resp.Total)
	assert.Equal(t, "Three", resp.Results[0].Title)
	assert.Equal(t, 3, resp.Results[0].Score)
	assert.Equal(t, "The dog, the dog and the other dog.", resp.Results[0].Excerpt)
	assert.Equal(t, "One", resp.Results[1].Title)
	assert.Empty(t, resp.Warning)
}

func TestSearch_EmptyQuery(t *testing.T) {
	s := seeded(t)
	h := New(resolver.New(s), s, 150)

	rec := httptest.NewRecorder()
	h.Search(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.Zero(t, resp.Total)
	assert.NotNil(t, resp.Results)
	assert.NotNil(t, resp.Words)
}

func TestSearch_StoreFailureReturnsWarning(t *testing.T) {
	h := New(resolver.New(failingReader{}), failingLister{}, 150)

	rec := httptest.NewRecorder()
	h.Search(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search?q=dog", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.Zero(t, resp.Total)
	assert.NotEmpty(t, resp.Warning)
}

func TestListDocuments(t *testing.T) {
	s := seeded(t)
	h := New(resolver.New(s), s, 150)

	rec := httptest.NewRecorder()
	h.ListDocuments(rec, httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Total     int              `json:"total"`
		Documents []store.Document `json:"documents"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, 2, body.Total)
	assert.Equal(t, "Three", body.Documents[0].Title)
	assert.Equal(t, "One", body.Documents[1].Title)
}

func TestListDocuments_StoreFailure(t *testing.T) {
	h := New(resolver.New(failingReader{}), failingLister{}, 150)

	rec := httptest.NewRecorder()
	h.ListDocuments(rec, httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
