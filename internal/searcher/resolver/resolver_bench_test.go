package resolver

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/store/memory"
)

// BenchmarkSearch measures end-to-end query resolution against the memory
// store for queries of varying length.
func BenchmarkSearch(b *testing.B) {
	s := memory.New()
	e := indexer.NewEngine(s)
	words := []string{"search", "index", "rabbit", "queen", "king", "river", "garden", "letter"}
	for i := 0; i < 500; i++ {
		content := strings.Repeat(words[i%len(words)]+" ", i%7+1) + words[(i+3)%len(words)]
		if _, err := e.IngestDocument(context.Background(), indexer.NewDocument{Title: fmt.Sprintf("doc %d", i), Content: content}); err != nil {
			b.Fatal(err)
		}
	}
	r := New(s)

	for _, q := range []string{"rabbit", "king queen", "search index river garden letter"} {
		b.Run(strings.ReplaceAll(q, " ", "_"), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := r.Search(context.Background(), q); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
