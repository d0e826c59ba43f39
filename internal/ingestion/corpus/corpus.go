// Package corpus supplies documents for bulk ingestion: a small built-in set
// of public-domain excerpts, or a YAML file of the same shape.
package corpus

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/indexer"
)

//go:embed builtin.yaml
var builtin []byte

type file struct {
	Documents []indexer.NewDocument `yaml:"documents"`
}

// Builtin returns the embedded corpus.
func Builtin() ([]indexer.NewDocument, error) {
	return Parse(builtin)
}

// Load reads a corpus file. An empty path selects the built-in corpus.
func Load(path string) ([]indexer.NewDocument, error) {
	if path == "" {
		return Builtin()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus %s: %w", path, err)
	}
	docs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("corpus %s: %w", path, err)
	}
	return docs, nil
}

// Parse decodes `documents: [{title, author, content}]`.
func Parse(data []byte) ([]indexer.NewDocument, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing corpus: %w", err)
	}
	if len(f.Documents) == 0 {
		return nil, fmt.Errorf("corpus has no documents")
	}
	for i, d := range f.Documents {
		if d.Title == "" || d.Content == "" {
			return nil, fmt.Errorf("corpus document %d: title and content are required", i)
		}
	}
	return f.Documents, nil
}
