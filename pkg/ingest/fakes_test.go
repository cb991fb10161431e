package ingest

import (
	"context"
	"errors"
	"strings"

	"github.com/xhad/stressdocs/internal/models"
	"github.com/xhad/stressdocs/internal/types"
)

// fakeExtractor returns the file's own contents, or "" for names in fail.
type fakeExtractor struct {
	texts map[string]string
	fail  map[string]bool
}

func (f *fakeExtractor) Extract(file models.SourceFile) string {
	if f.fail[file.Name] {
		return ""
	}
	if text, ok := f.texts[file.Name]; ok {
		return text
	}
	return "content of " + file.Name
}

// fakeChunker splits on "|" so tests control chunk counts directly.
type fakeChunker struct{}

func (fakeChunker) Split(text string) types.ChunkResult {
	parts := strings.Split(text, "|")
	return types.ChunkResult{Chunks: parts, TokenCount: len(strings.Fields(text))}
}

// fakeEmbedder returns an empty vector for texts containing "FAIL".
// after, when set, runs with the call count once each call is counted.
type fakeEmbedder struct {
	calls int
	after func(calls int)
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) []float32 {
	f.calls++
	if f.after != nil {
		f.after(f.calls)
	}
	if strings.Contains(text, "FAIL") {
		return []float32{}
	}
	return []float32{float32(len(text)), 1}
}

// fakeIndex records every batch and rejects documents whose content
// contains "REJECT". When err is set the whole request fails; respond
// replaces the result entirely.
type fakeIndex struct {
	batches [][]models.IndexedDocument
	err     error
	short   bool
	respond func([]models.IndexedDocument) models.BatchResult
}

func (f *fakeIndex) Upload(ctx context.Context, docs []models.IndexedDocument) models.BatchResult {
	f.batches = append(f.batches, docs)
	if f.respond != nil {
		return f.respond(docs)
	}
	if f.err != nil {
		return models.FailedBatch(docs, f.err)
	}
	res := models.BatchResult{}
	for _, doc := range docs {
		item := models.ItemResult{Key: doc.ID, Succeeded: !strings.Contains(doc.Content, "REJECT")}
		if !item.Succeeded {
			item.Message = "rejected"
		}
		res.Items = append(res.Items, item)
	}
	if f.short && len(res.Items) > 0 {
		res.Items = res.Items[1:]
	}
	res.Tally()
	return res
}

func (f *fakeIndex) Search(ctx context.Context, q models.SearchQuery) ([]models.SearchResult, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeIndex) Close() {}

func (f *fakeIndex) docs() []models.IndexedDocument {
	var out []models.IndexedDocument
	for _, b := range f.batches {
		out = append(out, b...)
	}
	return out
}
