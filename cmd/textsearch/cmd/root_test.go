package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/searcher/resolver"
	"github.com/Adithya-Monish-Kumar-K/textsearch/pkg/config"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestIngestSearchDocuments(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ts.db")

	out, err := run(t, "ingest", "--driver", "sqlite", "--sqlite-path", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Alice in Wonderland")
	assert.Contains(t, out, "5 ingested, 0 skipped")

	out, err = run(t, "search", "--driver", "sqlite", "--sqlite-path", db, "king", "queen")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "1. A Tale of Two Cities (Charles Dickens) score=4"), out)

	out, err = run(t, "search", "--driver", "sqlite", "--sqlite-path", db, "--format", "json", "rabbit")
	require.NoError(t, err)
	var result resolver.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Documents, 1)
	assert.Equal(t, "Alice in Wonderland", result.Documents[0].Document.Title)
	assert.Equal(t, 2, result.Documents[0].Score)

	out, err = run(t, "search", "--driver", "sqlite", "--sqlite-path", db, "unicorn")
	require.NoError(t, err)
	assert.Contains(t, out, `No results for "unicorn"`)

	out, err = run(t, "documents", "--driver", "sqlite", "--sqlite-path", db)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 6)
}

func TestIngest_File(t *testing.T) {
	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "corpus.yaml")
	require.NoError(t, os.WriteFile(corpusPath, []byte(`
documents:
  - title: Once
    content: A dog.
  - title: Thrice
    content: Dog, dog and dog.
`), 0o644))
	db := filepath.Join(dir, "ts.db")

	_, err := run(t, "ingest", "--driver", "sqlite", "--sqlite-path", db, "--file", corpusPath)
	require.NoError(t, err)

	out, err := run(t, "search", "--driver", "sqlite", "--sqlite-path", db, "dog")
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "Thrice"), strings.Index(out, "Once"))
}

func TestUnknownDriver(t *testing.T) {
	_, err := run(t, "documents", "--driver", "cassandra")
	assert.ErrorContains(t, err, "unknown store driver")
}

func TestRoutes(t *testing.T) {
	cfg, err := (&rootOptions{driver: config.DriverMemory}).loadConfig()
	require.NoError(t, err)
	a, err := newApp(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()
	srv := httptest.NewServer(a.routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/v1/documents", "application/json",
		strings.NewReader(`{"title":"Dogs","author":"Anon","content":"dog dog dog"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, err = http.Get(srv.URL + "/api/v1/search?q=dog")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Total   int `json:"total"`
		Results []struct {
			Title string `json:"title"`
			Score int    `json:"score"`
		} `json:"results"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, 1, body.Total)
	assert.Equal(t, "Dogs", body.Results[0].Title)
	assert.Equal(t, 3, body.Results[0].Score)

	ready, err := http.Get(srv.URL + "/health/ready")
	require.NoError(t, err)
	ready.Body.Close()
	assert.Equal(t, http.StatusOK, ready.StatusCode)
}
