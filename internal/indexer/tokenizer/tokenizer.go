// Package tokenizer provides text tokenisation for the search engine.
// It lower-cases input, splits on word boundaries, keeps purely alphabetic
// ASCII tokens and removes stop-words. Each surviving token carries its index
// in the raw token stream, so positions have gaps where tokens were dropped.
package tokenizer

import (
	"strings"
	"unicode"
)

var stopWords = func() map[string]struct{} {
	words := []string{
		"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for", "of", "with",
		"by", "from", "up", "about", "into", "through", "during", "is", "are", "was", "were",
		"be", "been", "being", "have", "has", "had", "do", "does", "did", "will", "would",
		"could", "should", "may", "might", "must", "can", "this", "that", "these", "those",
		"i", "you", "he", "she", "it", "we", "they", "what", "which", "who", "when", "where",
		"why", "how", "as", "if", "than", "because", "while", "so", "not", "no",
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}()

// Token represents a single normalised term and its position in the
// original text.
type Token struct {
	Term     string
	Position int
}

// Options selects which filters run after splitting.
type Options struct {
	AlphaOnly     bool
	DropStopwords bool
}

var (
	// DefaultOptions is the ingestion filter set.
	DefaultOptions = Options{AlphaOnly: true, DropStopwords: true}
	// QueryOptions only lowercases and splits; queries are searched verbatim.
	QueryOptions = Options{}
)

// Tokenize breaks text into lowercased, alphabetic, non-stop-word Tokens.
func Tokenize(text string) []Token {
	return TokenizeWith(text, DefaultOptions)
}

// TokenizeWith is Tokenize with a caller-chosen filter set. Positions always
// count every raw token, filtered or not.
func TokenizeWith(text string, opts Options) []Token {
	words := splitWords(strings.ToLower(text))
	tokens := make([]Token, 0, len(words)/2)
	for pos, word := range words {
		if !opts.keep(word) {
			continue
		}
		tokens = append(tokens, Token{
			Term:     word,
			Position: pos,
		})
	}
	return tokens
}

// SplitQuery lowercases a query and splits it on whitespace, then applies
// opts. Duplicate words are collapsed, first occurrence wins.
func SplitQuery(query string, opts Options) []string {
	fields := strings.Fields(strings.ToLower(query))
	words := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if !opts.keep(f) {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		words = append(words, f)
	}
	return words
}

// IsStopword reports whether word is in the fixed stop-word set.
func IsStopword(word string) bool {
	_, ok := stopWords[word]
	return ok
}

// IsTerm reports whether word is a valid index term: one or more ASCII
// lowercase letters and not a stop-word.
func IsTerm(word string) bool {
	return DefaultOptions.keep(word)
}

func (o Options) keep(word string) bool {
	if word == "" {
		return false
	}
	if o.AlphaOnly && !isLowerAlpha(word) {
		return false
	}
	if o.DropStopwords && IsStopword(word) {
		return false
	}
	return true
}

// splitWords splits on every run of characters that is not a letter, digit
// or underscore.
func splitWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}

func isLowerAlpha(word string) bool {
	for i := 0; i < len(word); i++ {
		if word[i] < 'a' || word[i] > 'z' {
			return false
		}
	}
	return true
}
