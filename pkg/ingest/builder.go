package ingest

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/xhad/stressdocs/internal/models"
)

// CreatedDateLayout renders timestamps with microseconds and a literal Z.
const CreatedDateLayout = "2006-01-02T15:04:05.000000Z"

// DocumentID is stable across runs so re-ingesting a file overwrites
// its previous chunks.
func DocumentID(filename string, chunkIndex, totalChunks int) string {
	suffix := "_single"
	if totalChunks > 1 {
		suffix = fmt.Sprintf("_chunk%d", chunkIndex)
	}
	sum := md5.Sum([]byte(filename + suffix))
	return hex.EncodeToString(sum[:])
}

// BuildDocument assembles the index record for one embedded chunk.
func BuildDocument(file models.SourceFile, meta models.DocumentMetadata, chunk models.Chunk, vector []float32, now time.Time) models.IndexedDocument {
	title := file.Name
	summary := fmt.Sprintf("Complete content from %s", file.Name)
	if chunk.Total > 1 {
		title = fmt.Sprintf("%s (Chunk %d/%d)", file.Name, chunk.Index+1, chunk.Total)
		summary = fmt.Sprintf("Chunk %d of %d from %s", chunk.Index+1, chunk.Total, file.Name)
	}

	return models.IndexedDocument{
		ID:             DocumentID(file.Name, chunk.Index, chunk.Total),
		Title:          title,
		Content:        chunk.Text,
		Summary:        summary,
		DocumentType:   meta.DocumentType,
		Institution:    meta.Institution,
		Year:           meta.Year,
		FileFormat:     strings.ToUpper(strings.TrimPrefix(file.Ext, ".")),
		Tags:           meta.Tags,
		ChunkIndex:     chunk.Index,
		TotalChunks:    chunk.Total,
		FilePath:       file.Path,
		FileSize:       file.Size,
		CreatedDate:    now.UTC().Format(CreatedDateLayout),
		RelevanceScore: float64(len(strings.Fields(chunk.Text))) / 1000,
		ContentVector:  vector,
	}
}
