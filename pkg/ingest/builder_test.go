package ingest

import (
	"crypto/md5"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/xhad/stressdocs/internal/models"
)

var (
	testFile = models.SourceFile{
		Path: "financial_data/boe_stress_test_2023.pdf",
		Name: "boe_stress_test_2023.pdf",
		Ext:  ".pdf",
		Size: 2048,
	}
	testMeta = models.DocumentMetadata{
		Institution:  "Bank of England",
		DocumentType: "Stress Test",
		Year:         2023,
		Tags:         "stress-test,boe,bank-of-england",
	}
	testNow = time.Date(2024, 3, 5, 14, 7, 9, 123456000, time.FixedZone("EST", -5*3600))
)

func md5hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestBuildDocumentSingleChunk(t *testing.T) {
	chunk := models.Chunk{Index: 0, Total: 1, Text: "Banks remain resilient to the stress scenario"}
	doc := BuildDocument(testFile, testMeta, chunk, []float32{0.1, 0.2}, testNow)

	assert.Equal(t, md5hex("boe_stress_test_2023.pdf_single"), doc.ID)
	assert.Equal(t, "boe_stress_test_2023.pdf", doc.Title)
	assert.Equal(t, "Complete content from boe_stress_test_2023.pdf", doc.Summary)
	assert.Equal(t, chunk.Text, doc.Content)
	assert.Equal(t, 0, doc.ChunkIndex)
	assert.Equal(t, 1, doc.TotalChunks)
	assert.Equal(t, "PDF", doc.FileFormat)
	assert.Equal(t, "Bank of England", doc.Institution)
	assert.Equal(t, "Stress Test", doc.DocumentType)
	assert.Equal(t, 2023, doc.Year)
	assert.Equal(t, testMeta.Tags, doc.Tags)
	assert.Equal(t, testFile.Path, doc.FilePath)
	assert.Equal(t, int64(2048), doc.FileSize)
	assert.Equal(t, "2024-03-05T19:07:09.123456Z", doc.CreatedDate)
	assert.InDelta(t, 0.007, doc.RelevanceScore, 1e-12)
	assert.Equal(t, []float32{0.1, 0.2}, doc.ContentVector)
}

func TestBuildDocumentMultiChunk(t *testing.T) {
	chunk := models.Chunk{Index: 2, Total: 4, Text: "tail"}
	doc := BuildDocument(testFile, testMeta, chunk, nil, testNow)

	assert.Equal(t, md5hex("boe_stress_test_2023.pdf_chunk2"), doc.ID)
	assert.Equal(t, "boe_stress_test_2023.pdf (Chunk 3/4)", doc.Title)
	assert.Equal(t, "Chunk 3 of 4 from boe_stress_test_2023.pdf", doc.Summary)
	assert.Equal(t, 2, doc.ChunkIndex)
	assert.Equal(t, 4, doc.TotalChunks)
}

func TestDocumentID(t *testing.T) {
	// same input, same id
	assert.Equal(t, DocumentID("a.csv", 0, 1), DocumentID("a.csv", 0, 1))
	assert.Len(t, DocumentID("a.csv", 0, 1), 32)

	// a single chunk and the first of many differ
	assert.NotEqual(t, DocumentID("a.csv", 0, 1), DocumentID("a.csv", 0, 2))

	// chunk count changes do not affect ids of the same position
	assert.Equal(t, DocumentID("a.csv", 1, 2), DocumentID("a.csv", 1, 3))

	// filenames are part of the hash
	assert.NotEqual(t, DocumentID("a.csv", 1, 2), DocumentID("b.csv", 1, 2))
}
