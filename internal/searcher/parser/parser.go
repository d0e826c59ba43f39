// Package parser turns a raw query string into the word set the resolver
// looks up.
package parser

import (
	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/indexer/tokenizer"
)

type QueryPlan struct {
	Words    []string
	RawQuery string
}

// IsEmpty reports whether the plan has nothing to look up.
func (p *QueryPlan) IsEmpty() bool {
	return len(p.Words) == 0
}

// Parser splits queries with a fixed set of tokenizer options.
type Parser struct {
	opts tokenizer.Options
}

func New(opts tokenizer.Options) *Parser {
	return &Parser{opts: opts}
}

// Parse lowercases and whitespace-splits query. Duplicate words collapse to
// their first occurrence.
func (p *Parser) Parse(query string) *QueryPlan {
	return &QueryPlan{
		Words:    tokenizer.SplitQuery(query, p.opts),
		RawQuery: query,
	}
}

// Parse uses the default query options, which search words verbatim.
func Parse(query string) *QueryPlan {
	return New(tokenizer.QueryOptions).Parse(query)
}
