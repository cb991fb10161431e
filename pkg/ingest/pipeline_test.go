package ingest

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xhad/stressdocs/pkg/metadata"
)

type harness struct {
	dir       string
	extractor *fakeExtractor
	embedder  *fakeEmbedder
	index     *fakeIndex
	events    []Event
}

func newHarness(t *testing.T) *harness {
	return &harness{
		dir:       t.TempDir(),
		extractor: &fakeExtractor{texts: map[string]string{}, fail: map[string]bool{}},
		embedder:  &fakeEmbedder{},
		index:     &fakeIndex{},
	}
}

func (h *harness) pipeline(t *testing.T, batchSize int) *Pipeline {
	t.Helper()
	p, err := NewWithConfig(PipelineConfig{
		InputDir:   h.dir,
		BatchSize:  batchSize,
		Extractor:  h.extractor,
		Classifier: metadata.NewDefault(),
		Chunker:    fakeChunker{},
		Embedder:   h.embedder,
		Index:      h.index,
		OnProgress: func(e Event) { h.events = append(h.events, e) },
		Now:        func() time.Time { return testNow },
	})
	require.NoError(t, err)
	return p
}

func TestRunSingleChunkFile(t *testing.T) {
	h := newHarness(t)
	touch(t, h.dir, "boe-stress-test-2023.pdf")
	h.extractor.texts["boe-stress-test-2023.pdf"] = strings.Repeat("capital ", 50)

	summary, err := h.pipeline(t, 8).Run(context.Background())
	require.NoError(t, err)

	docs := h.index.docs()
	require.Len(t, docs, 1)
	doc := docs[0]
	assert.Equal(t, 0, doc.ChunkIndex)
	assert.Equal(t, 1, doc.TotalChunks)
	assert.Equal(t, "boe-stress-test-2023.pdf", doc.Title)
	assert.NotContains(t, doc.Title, "(Chunk")
	assert.Equal(t, "Bank of England", doc.Institution)
	assert.Equal(t, "Stress Test", doc.DocumentType)
	assert.Equal(t, 2023, doc.Year)
	assert.Equal(t, DocumentID("boe-stress-test-2023.pdf", 0, 1), doc.ID)

	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 1, summary.FilesFound)
	assert.Equal(t, 1, summary.FilesProcessed)
	assert.Equal(t, 1, summary.DocumentsBuilt)
	assert.Equal(t, 1, summary.Uploaded)
	assert.Equal(t, 1, summary.Batches)

	require.NotEmpty(t, h.events)
	assert.Equal(t, StageDiscovering, h.events[0].Stage)
	assert.Equal(t, StageDone, h.events[len(h.events)-1].Stage)
}

func TestRunEmptyDirectory(t *testing.T) {
	h := newHarness(t)
	touch(t, h.dir, "readme.txt", "document_inventory.json")

	summary, err := h.pipeline(t, 8).Run(context.Background())
	assert.ErrorIs(t, err, ErrNoDocuments)
	assert.Equal(t, 0, summary.Uploaded)
	assert.Empty(t, h.index.batches)
	assert.Zero(t, h.embedder.calls)
}

func TestRunMissingDirectory(t *testing.T) {
	h := newHarness(t)
	h.dir = h.dir + "/missing"

	_, err := h.pipeline(t, 8).Run(context.Background())
	assert.ErrorIs(t, err, ErrInputDirNotFound)
}

func TestRunSkipsAndDrops(t *testing.T) {
	h := newHarness(t)
	touch(t, h.dir, "a_fed_2022.pdf", "b_broken.xlsx", "c_imf.csv")
	h.extractor.fail["b_broken.xlsx"] = true
	h.extractor.texts["a_fed_2022.pdf"] = "one|FAIL two|three"
	h.extractor.texts["c_imf.csv"] = "REJECT|ok"

	summary, err := h.pipeline(t, 8).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.FilesFound)
	assert.Equal(t, 2, summary.FilesProcessed)
	assert.Equal(t, 1, summary.FilesSkipped)
	assert.Equal(t, 5, summary.ChunksCreated)
	assert.Equal(t, 1, summary.ChunksDropped)
	assert.Equal(t, 4, summary.DocumentsBuilt)
	assert.Equal(t, 4, summary.Attempted)
	assert.Equal(t, 3, summary.Uploaded)
	assert.Equal(t, 1, summary.Failed)

	docs := h.index.docs()
	require.Len(t, docs, 4)

	// the dropped middle chunk leaves a gap but does not change totals
	assert.Equal(t, 0, docs[0].ChunkIndex)
	assert.Equal(t, 2, docs[1].ChunkIndex)
	assert.Equal(t, 3, docs[0].TotalChunks)
	assert.Equal(t, 3, docs[1].TotalChunks)
	assert.Equal(t, "a_fed_2022.pdf (Chunk 3/3)", docs[1].Title)
	assert.Equal(t, "Federal Reserve", docs[0].Institution)
	assert.Equal(t, "International Monetary Fund", docs[2].Institution)
}

func TestRunBatchesSpanFiles(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 5; i++ {
		name := fmt.Sprintf("report_%d.csv", i)
		touch(t, h.dir, name)
		h.extractor.texts[name] = "a|b|c"
	}

	summary, err := h.pipeline(t, 8).Run(context.Background())
	require.NoError(t, err)

	// 15 documents in discovery order: 8 + 7
	require.Len(t, h.index.batches, 2)
	assert.Len(t, h.index.batches[0], 8)
	assert.Len(t, h.index.batches[1], 7)
	assert.Equal(t, "report_2.csv (Chunk 2/3)", h.index.batches[0][7].Title)
	assert.Equal(t, 2, summary.Batches)
	assert.Equal(t, 15, summary.Uploaded)

	var uploads int
	for _, e := range h.events {
		if e.Stage == StageUploading {
			require.NotNil(t, e.Batch)
			assert.Equal(t, len(h.index.batches[uploads]), e.Batch.Succeeded+e.Batch.Failed)
			uploads++
		}
	}
	assert.Equal(t, 2, uploads)
}

func TestRunIsIdempotent(t *testing.T) {
	h := newHarness(t)
	touch(t, h.dir, "bis_review.pdf", "basel.csv")
	h.extractor.texts["bis_review.pdf"] = "x|y"

	p := h.pipeline(t, 8)
	_, err := p.Run(context.Background())
	require.NoError(t, err)
	first := h.index.docs()

	h.index.batches = nil
	_, err = p.Run(context.Background())
	require.NoError(t, err)
	second := h.index.docs()

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}

func TestRunCancelled(t *testing.T) {
	h := newHarness(t)
	touch(t, h.dir, "fred.csv")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.pipeline(t, 8).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, h.index.batches)
}

func TestRunCancelledMidFileAccountsForQueuedDocuments(t *testing.T) {
	h := newHarness(t)
	touch(t, h.dir, "fred.csv")
	h.extractor.texts["fred.csv"] = "a|b|c|d|e"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.embedder.after = func(calls int) {
		if calls == 3 {
			cancel()
		}
	}

	summary, err := h.pipeline(t, 2).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	// first batch went out before the cancel; the third document was queued
	require.Len(t, h.index.batches, 1)
	assert.Equal(t, 3, summary.DocumentsBuilt)
	assert.Equal(t, summary.DocumentsBuilt, summary.Attempted)
	assert.Equal(t, 2, summary.Uploaded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 2, summary.Batches)

	last := h.events[len(h.events)-1]
	require.Equal(t, StageUploading, last.Stage)
	assert.ErrorIs(t, last.Batch.Err, context.Canceled)
	assert.Equal(t, 1, last.Batch.Failed)
}

func TestNewWithConfigRequiresStages(t *testing.T) {
	_, err := NewWithConfig(PipelineConfig{})
	assert.Error(t, err)
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "embedding", StageEmbedding.String())
	assert.Equal(t, "stage(42)", Stage(42).String())
}
