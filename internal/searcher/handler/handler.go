package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/searcher/excerpt"
	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/searcher/resolver"
	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/store"
	apperrors "github.com/Adithya-Monish-Kumar-K/textsearch/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/textsearch/pkg/logger"
)

type Searcher interface {
	Search(ctx context.Context, query string) (*resolver.Result, error)
}

type DocumentLister interface {
	ListDocuments(ctx context.Context) ([]store.Document, error)
}

type SearchHit struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	Score     int       `json:"score"`
	Excerpt   string    `json:"excerpt"`
}

type SearchResponse struct {
	Query   string      `json:"query"`
	Words   []string    `json:"words"`
	Total   int         `json:"total"`
	Results []SearchHit `json:"results"`
	Warning string      `json:"warning,omitempty"`
}

type Handler struct {
	searcher      Searcher
	documents     DocumentLister
	excerptLength int
	logger        *slog.Logger
}

func New(searcher Searcher, documents DocumentLister, excerptLength int) *Handler {
	return &Handler{
		searcher:      searcher,
		documents:     documents,
		excerptLength: excerptLength,
		logger:        slog.Default().With("component", "search-handler"),
	}
}

// Search serves GET /api/v1/search?q=. A missing or blank q yields an empty
// result, not an error. A store failure yields an empty result with a
// warning and status 200.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query().Get("q")

	result, err := h.searcher.Search(ctx, query)
	resp := SearchResponse{Query: query, Words: []string{}, Results: []SearchHit{}}
	if err != nil {
		if !errors.Is(err, apperrors.ErrStorageRead) || result == nil {
			logger.FromContext(ctx).Error("search failed", "query", query, "error", err)
			h.writeError(w, apperrors.HTTPStatusCode(err), "search failed")
			return
		}
		resp.Warning = "search is temporarily unavailable; results may be incomplete"
	}
	if result.Words != nil {
		resp.Words = result.Words
	}
	for _, sd := range result.Documents {
		resp.Results = append(resp.Results, SearchHit{
			ID:        sd.Document.ID,
			Title:     sd.Document.Title,
			Author:    sd.Document.Author,
			CreatedAt: sd.Document.CreatedAt,
			Score:     sd.Score,
			Excerpt:   excerpt.Build(sd.Document.Content, query, h.excerptLength),
		})
	}
	resp.Total = len(resp.Results)

	logger.FromContext(ctx).Info("search completed",
		"query", query,
		"returned", resp.Total,
		"degraded", resp.Warning != "",
	)
	h.writeJSON(w, http.StatusOK, resp)
}

// ListDocuments serves GET /api/v1/documents, newest first.
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.documents.ListDocuments(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error("listing documents failed", "error", err)
		h.writeError(w, apperrors.HTTPStatusCode(err), "listing documents failed")
		return
	}
	if docs == nil {
		docs = []store.Document{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"total":     len(docs),
		"documents": docs,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
