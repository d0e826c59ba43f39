package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/ingestion"
)

func TestValidateIngestRequest(t *testing.T) {
	tests := []struct {
		name   string
		req    ingestion.IngestRequest
		fields []string
	}{
		{name: "valid", req: ingestion.IngestRequest{Title: "Emma", Author: "Jane Austen", Content: "Emma Woodhouse"}},
		{name: "author optional", req: ingestion.IngestRequest{Title: "Emma", Content: "text"}},
		{name: "missing title", req: ingestion.IngestRequest{Content: "text"}, fields: []string{"title"}},
		{name: "blank content", req: ingestion.IngestRequest{Title: "Emma", Content: "  \n "}, fields: []string{"content"}},
		{name: "both missing", req: ingestion.IngestRequest{}, fields: []string{"content", "title"}},
		{
			name:   "oversized",
			req:    ingestion.IngestRequest{Title: strings.Repeat("t", maxTitleLength+1), Author: strings.Repeat("a", maxAuthorLength+1), Content: "x"},
			fields: []string{"author", "title"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIngestRequest(&tt.req)
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			got := make([]string, 0, len(verr.Fields))
			for f := range verr.Fields {
				got = append(got, f)
			}
			assert.ElementsMatch(t, tt.fields, got)
		})
	}
}

func TestValidationError_StableMessage(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"title": "required", "content": "required"}}
	assert.Equal(t, "content: required; title: required", err.Error())
}
