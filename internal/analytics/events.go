// Package analytics publishes search and ingestion events to Kafka. Events
// are buffered and sent from a single background goroutine so callers never
// block on the broker.
package analytics

import "time"

type EventType string

const (
	EventSearch     EventType = "search"
	EventZeroResult EventType = "zero_result"
	EventSearchFail EventType = "search_failed"
	EventIndexDoc   EventType = "index_document"
)

type SearchEvent struct {
	Type      EventType `json:"type"`
	Query     string    `json:"query"`
	Words     []string  `json:"words"`
	Returned  int       `json:"returned"`
	LatencyMs int64     `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

type IndexEvent struct {
	Type        EventType `json:"type"`
	DocumentID  string    `json:"document_id"`
	UniqueTerms int       `json:"unique_terms"`
	Indexed     int       `json:"indexed"`
	Failed      int       `json:"failed"`
	SizeBytes   int       `json:"size_bytes"`
	LatencyMs   int64     `json:"latency_ms"`
	Timestamp   time.Time `json:"timestamp"`
}
