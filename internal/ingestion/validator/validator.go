// Package validator checks ingestion requests and reports per-field errors.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/ingestion"
)

const (
	maxTitleLength   = 1024
	maxAuthorLength  = 512
	maxContentLength = 1048576
)

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

// ValidateIngestRequest requires a title and content and bounds every field.
func ValidateIngestRequest(req *ingestion.IngestRequest) error {
	errs := make(map[string]string)

	title := strings.TrimSpace(req.Title)
	if title == "" {
		errs["title"] = "title is required"
	} else if len(title) > maxTitleLength {
		errs["title"] = fmt.Sprintf("title must be at most %d characters", maxTitleLength)
	}
	if len(req.Author) > maxAuthorLength {
		errs["author"] = fmt.Sprintf("author must be at most %d characters", maxAuthorLength)
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		errs["content"] = "content is required"
	} else if len(content) > maxContentLength {
		errs["content"] = fmt.Sprintf("content must be at most %d characters", maxContentLength)
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
