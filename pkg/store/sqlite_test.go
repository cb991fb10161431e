package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xhad/stressdocs/internal/models"
	"github.com/xhad/stressdocs/pkg/config"
	"github.com/xhad/stressdocs/pkg/store"
)

func newSQLite(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLite(context.Background(), store.SQLiteConfig{
		Path: filepath.Join(t.TempDir(), "index.db"),
	})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestSQLiteUploadAndSearch(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()

	docs := []models.IndexedDocument{
		{
			ID:            "boe",
			Title:         "boe_climate_2021.pdf",
			Content:       "Climate scenario losses for UK banks",
			Institution:   "Bank of England",
			DocumentType:  "Climate Stress Test",
			Year:          2021,
			ContentVector: []float32{1, 0, 0},
		},
		{
			ID:            "fed",
			Title:         "dfast_2022.pdf",
			Content:       "Severely adverse scenario capital ratios",
			Institution:   "Federal Reserve",
			DocumentType:  "DFAST Results",
			Year:          2022,
			ContentVector: []float32{0, 1, 0},
		},
		{
			ID:            "imf",
			Title:         "gfsr_2024.pdf",
			Content:       "Global financial stability and climate risks",
			Institution:   "International Monetary Fund",
			DocumentType:  "GFSR Report",
			Year:          2024,
			ContentVector: []float32{1, 0, 0.2},
		},
	}

	res := s.Upload(ctx, docs)
	require.NoError(t, res.Err)
	assert.Equal(t, 3, res.Succeeded)
	assert.Equal(t, 0, res.Failed)

	t.Run("vector only", func(t *testing.T) {
		results, err := s.Search(ctx, models.SearchQuery{Vector: []float32{1, 0, 0}, Top: 2})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "boe", results[0].ID)
		assert.Equal(t, "imf", results[1].ID)
		assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	})

	t.Run("text only", func(t *testing.T) {
		results, err := s.Search(ctx, models.SearchQuery{Text: "capital ratios", Top: 1})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "fed", results[0].ID)
		assert.Equal(t, "Federal Reserve", results[0].Institution)
		assert.Equal(t, 2022, results[0].Year)
	})

	t.Run("hybrid", func(t *testing.T) {
		results, err := s.Search(ctx, models.SearchQuery{Text: "climate", Vector: []float32{0, 1, 0}, Top: 3})
		require.NoError(t, err)
		require.Len(t, results, 3)
		// vector similarity outweighs the keyword match
		assert.Equal(t, "fed", results[0].ID)
		assert.InDelta(t, store.VectorWeight, results[0].Score, 1e-6)
	})
}

func TestSQLiteUploadIsIdempotent(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()

	doc := models.IndexedDocument{ID: "same", Title: "bis.pdf", Content: "first", ContentVector: []float32{1}}
	require.Equal(t, 1, s.Upload(ctx, []models.IndexedDocument{doc}).Succeeded)

	doc.Content = "second version"
	require.Equal(t, 1, s.Upload(ctx, []models.IndexedDocument{doc}).Succeeded)

	results, err := s.Search(ctx, models.SearchQuery{Text: "second", Top: 10})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "second version", results[0].Content)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	idx, err := store.Open(ctx, config.IndexConfig{
		Backend:    config.BackendSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "open.db"),
	})
	require.NoError(t, err)
	idx.Close()

	idx, err = store.Open(ctx, config.IndexConfig{
		Backend:  config.BackendAzure,
		Endpoint: "https://example.search.windows.net",
		APIKey:   "key",
	})
	require.NoError(t, err)
	assert.IsType(t, &store.AzureSearch{}, idx)

	_, err = store.Open(ctx, config.IndexConfig{Backend: "elasticsearch"})
	assert.Error(t, err)

	idx, err = store.Open(ctx, config.IndexConfig{Backend: config.BackendAzure})
	assert.Error(t, err)
	assert.Nil(t, idx)
}
