package postgres

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/store"
	"github.com/Adithya-Monish-Kumar-K/textsearch/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/textsearch/pkg/errors"
	pkgpostgres "github.com/Adithya-Monish-Kumar-K/textsearch/pkg/postgres"
)

// openTestStore skips the test when PostgreSQL is unavailable.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	client, err := pkgpostgres.New(config.PostgresConfig{
		URL:             os.Getenv("TEST_POSTGRES_URL"),
		Host:            envOrDefault("TEST_POSTGRES_HOST", "localhost"),
		Port:            envOrDefaultInt("TEST_POSTGRES_PORT", 5432),
		Database:        envOrDefault("TEST_POSTGRES_DB", "textsearch_test"),
		User:            envOrDefault("TEST_POSTGRES_USER", "textsearch"),
		Password:        envOrDefault("TEST_POSTGRES_PASSWORD", "localdev"),
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
	})
	if err != nil {
		t.Skipf("skipping postgres test: %v", err)
	}
	s := New(client, 5*time.Second)
	ctx := context.Background()
	require.NoError(t, s.Migrate(ctx))
	_, err = client.DB.ExecContext(ctx, `TRUNCATE inverted_index, documents`)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func TestStore_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	one, err := s.CreateDocument(ctx, "One", "A", "dog")
	require.NoError(t, err)
	three, err := s.CreateDocument(ctx, "Three", "B", "dog dog dog")
	require.NoError(t, err)

	require.NoError(t, s.InsertIndexRecord(ctx, store.IndexRecord{Word: "dog", DocumentID: one.ID, Frequency: 1, Positions: []int{0}}))
	require.NoError(t, s.InsertIndexRecord(ctx, store.IndexRecord{Word: "dog", DocumentID: three.ID, Frequency: 1, Positions: []int{0}}))
	// upsert replaces the earlier record
	require.NoError(t, s.InsertIndexRecord(ctx, store.IndexRecord{Word: "dog", DocumentID: three.ID, Frequency: 3, Positions: []int{0, 1, 2}}))

	matches, err := s.FindIndexRecordsByWords(ctx, []string{"dog", "cat"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []store.Match{
		{DocumentID: one.ID, Frequency: 1},
		{DocumentID: three.ID, Frequency: 3},
	}, matches)

	docs, err := s.FindDocumentsByIDs(ctx, []string{three.ID, one.ID, "not-a-uuid"})
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	listed, err := s.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, three.ID, listed[0].ID)

	_, err = s.GetDocument(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, apperrors.ErrDocumentNotFound)
}

func TestStore_InsertIndexRecordUnknownDocument(t *testing.T) {
	s := openTestStore(t)
	err := s.InsertIndexRecord(context.Background(), store.IndexRecord{
		Word:       "dog",
		DocumentID: "00000000-0000-0000-0000-000000000001",
		Frequency:  1,
		Positions:  []int{0},
	})
	assert.ErrorIs(t, err, apperrors.ErrStorageWrite)
}
