package types

import (
	"context"

	"github.com/xhad/stressdocs/internal/models"
)

// Core interfaces between pipeline stages
type Extractor interface {
	Extract(file models.SourceFile) string
}

type Classifier interface {
	Classify(filename string) models.DocumentMetadata
}

type Chunker interface {
	Split(text string) ChunkResult
}

// ChunkResult is the output of a Chunker for one document.
type ChunkResult struct {
	Chunks     []string
	TokenCount int
	Truncated  bool
}

type Embedder interface {
	Embed(ctx context.Context, text string) []float32
}

type Index interface {
	Upload(ctx context.Context, docs []models.IndexedDocument) models.BatchResult
	Search(ctx context.Context, query models.SearchQuery) ([]models.SearchResult, error)
	Close()
}
