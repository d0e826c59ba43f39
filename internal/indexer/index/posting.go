// Package index turns a document's token stream into inverted-index records:
// one record per distinct term, carrying its frequency and the raw token
// positions at which it occurs.
package index

import (
	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/store"
)

// Record is the per-document posting for a single term.
type Record struct {
	Word      string
	Frequency int
	Positions []int
}

// Build tokenizes text and accumulates one Record per distinct term. The
// order of the returned records is unspecified.
func Build(text string) []Record {
	tokens := tokenizer.Tokenize(text)
	termData := make(map[string]*Record)
	for _, token := range tokens {
		r, exists := termData[token.Term]
		if !exists {
			r = &Record{
				Word:      token.Term,
				Positions: make([]int, 0, 4),
			}
			termData[token.Term] = r
		}
		r.Frequency++
		r.Positions = append(r.Positions, token.Position)
	}
	records := make([]Record, 0, len(termData))
	for _, r := range termData {
		records = append(records, *r)
	}
	return records
}

// BuildForDocument is Build with every record bound to docID.
func BuildForDocument(docID string, text string) []store.IndexRecord {
	records := Build(text)
	out := make([]store.IndexRecord, 0, len(records))
	for _, r := range records {
		out = append(out, r.ForDocument(docID))
	}
	return out
}

// ForDocument binds the record to a stored document.
func (r Record) ForDocument(docID string) store.IndexRecord {
	return store.IndexRecord{
		Word:       r.Word,
		DocumentID: docID,
		Frequency:  r.Frequency,
		Positions:  r.Positions,
	}
}

// TotalFrequency sums Frequency across records.
func TotalFrequency(records []Record) int {
	total := 0
	for _, r := range records {
		total += r.Frequency
	}
	return total
}
