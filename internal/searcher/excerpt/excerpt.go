// Package excerpt cuts a short preview of a document around the first query
// word it contains.
package excerpt

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/indexer/tokenizer"
)

const (
	DefaultLength = 150
	lead          = 50
	ellipsis      = "..."
)

// Build returns up to length bytes of content starting 50 bytes before the
// first query word found. Without a match it starts at the beginning. The
// excerpt is wrapped in "..." when it is shorter than content.
func Build(content, query string, length int) string {
	if length <= 0 {
		length = DefaultLength
	}
	if content == "" {
		return ""
	}
	lower := strings.ToLower(content)
	start := 0
	for _, w := range tokenizer.SplitQuery(query, tokenizer.QueryOptions) {
		if i := strings.Index(lower, w); i >= 0 {
			start = min(max(i-lead, 0), len(content))
			break
		}
	}
	end := min(start+length, len(content))
	start = alignStart(content, start)
	end = alignEnd(content, end)
	if start == 0 && end == len(content) {
		return content
	}
	return ellipsis + content[start:end] + ellipsis
}

// Highlight wraps case-insensitive occurrences of words in <mark> tags.
func Highlight(text string, words []string) string {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(w))
	}
	if len(quoted) == 0 {
		return text
	}
	re := regexp.MustCompile(`(?i)` + strings.Join(quoted, "|"))
	return re.ReplaceAllString(text, "<mark>$0</mark>")
}

func alignStart(s string, i int) int {
	for i > 0 && i < len(s) && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

func alignEnd(s string, i int) int {
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return i
}
