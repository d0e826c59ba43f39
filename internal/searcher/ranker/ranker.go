// Package ranker scores documents by summed term frequency.
package ranker

import (
	"sort"

	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/store"
)

type ScoredDoc struct {
	DocID string `json:"doc_id"`
	Score int    `json:"score"`
}

// Rank sums Frequency per document and orders documents by descending score.
// Documents with equal scores keep the order in which they first appeared in
// matches. Documents without matches never appear.
func Rank(matches []store.Match) []ScoredDoc {
	positions := make(map[string]int)
	result := make([]ScoredDoc, 0)
	for _, m := range matches {
		i, ok := positions[m.DocumentID]
		if !ok {
			i = len(result)
			positions[m.DocumentID] = i
			result = append(result, ScoredDoc{DocID: m.DocumentID})
		}
		result[i].Score += m.Frequency
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Score > result[j].Score
	})
	return result
}

// IDs returns the document IDs of ranked in order.
func IDs(ranked []ScoredDoc) []string {
	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.DocID
	}
	return ids
}
