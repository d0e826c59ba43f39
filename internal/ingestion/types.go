// Package ingestion defines the request and response types of the document
// ingestion endpoints.
package ingestion

import (
	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/indexer"
)

// IngestRequest is the JSON body accepted by POST /api/v1/documents.
type IngestRequest struct {
	Title   string `json:"title"`
	Author  string `json:"author"`
	Content string `json:"content"`
}

// NewDocument converts the request into the indexer's input.
func (r *IngestRequest) NewDocument() indexer.NewDocument {
	return indexer.NewDocument{
		Title:   r.Title,
		Author:  r.Author,
		Content: r.Content,
	}
}

// IngestResponse is returned once the document exists and its index records
// have been attempted.
type IngestResponse struct {
	DocumentID string `json:"document_id"`
	Terms      int    `json:"terms"`
	Indexed    int    `json:"indexed"`
	Failed     int    `json:"failed"`
}

// ResponseFromReport builds an IngestResponse from an indexer report.
func ResponseFromReport(report *indexer.IngestReport) IngestResponse {
	return IngestResponse{
		DocumentID: report.Document.ID,
		Terms:      report.Terms,
		Indexed:    report.Indexed,
		Failed:     report.Failed,
	}
}
