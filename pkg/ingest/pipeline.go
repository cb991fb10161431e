// Package ingest drives a directory of source files through extraction,
// classification, chunking and embedding, and uploads the resulting
// documents to a search index.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xhad/stressdocs/internal/models"
	"github.com/xhad/stressdocs/internal/types"
	"github.com/xhad/stressdocs/pkg/logger"
)

var (
	ErrInputDirNotFound = errors.New("input directory not found")
	ErrNoDocuments      = errors.New("no documents found to process")

	errMismatchedResults = errors.New("index returned a different number of results than documents sent")
)

type Stage int

const (
	StageDiscovering Stage = iota
	StageExtracting
	StageChunking
	StageEmbedding
	StageUploading
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageDiscovering:
		return "discovering"
	case StageExtracting:
		return "extracting"
	case StageChunking:
		return "chunking"
	case StageEmbedding:
		return "embedding"
	case StageUploading:
		return "uploading"
	case StageDone:
		return "done"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Event reports progress. Only the fields relevant to Stage are set.
type Event struct {
	Stage     Stage
	File      string
	FileIndex int // 1-based
	FileCount int
	Chunk     int // 1-based
	Chunks    int
	Batch     *models.BatchResult
}

type Summary struct {
	RunID          string
	FilesFound     int
	FilesProcessed int
	FilesSkipped   int
	TruncatedFiles int
	ChunksCreated  int
	ChunksDropped  int
	DocumentsBuilt int
	Batches        int
	Attempted      int
	Uploaded       int
	Failed         int
	Duration       time.Duration
}

type PipelineConfig struct {
	InputDir  string
	Include   []string
	Exclude   []string
	BatchSize int

	Extractor  types.Extractor
	Classifier types.Classifier
	Chunker    types.Chunker
	Embedder   types.Embedder
	Index      types.Index

	Logger     *logger.Logger
	OnProgress func(Event)
	Now        func() time.Time
}

type Pipeline struct {
	config PipelineConfig
	log    *logger.Logger
}

func NewWithConfig(config PipelineConfig) (*Pipeline, error) {
	if config.InputDir == "" {
		config.InputDir = "financial_data"
	}
	if len(config.Include) == 0 {
		config.Include = []string{"*.pdf", "*.xlsx", "*.csv"}
	}
	if len(config.Exclude) == 0 {
		config.Exclude = []string{"document_inventory.json", "document_inventory.md"}
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultBatchSize
	}
	if config.Logger == nil {
		config.Logger = logger.Nop()
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	switch {
	case config.Extractor == nil:
		return nil, fmt.Errorf("pipeline requires an extractor")
	case config.Classifier == nil:
		return nil, fmt.Errorf("pipeline requires a classifier")
	case config.Chunker == nil:
		return nil, fmt.Errorf("pipeline requires a chunker")
	case config.Embedder == nil:
		return nil, fmt.Errorf("pipeline requires an embedder")
	case config.Index == nil:
		return nil, fmt.Errorf("pipeline requires an index")
	}

	return &Pipeline{
		config: config,
		log:    config.Logger,
	}, nil
}

func (p *Pipeline) emit(e Event) {
	if p.config.OnProgress != nil {
		p.config.OnProgress(e)
	}
}

// Run processes every discovered file in order. Per-file, per-chunk and
// per-batch failures are logged and counted; only a missing input
// directory, an empty one, or cancellation end the run with an error.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	started := time.Now()
	summary := Summary{RunID: uuid.NewString()}
	log := p.log.With("run_id", summary.RunID)

	p.emit(Event{Stage: StageDiscovering})
	files, err := Discover(p.config.InputDir, p.config.Include, p.config.Exclude)
	if err != nil {
		return summary, err
	}
	summary.FilesFound = len(files)
	if len(files) == 0 {
		return summary, fmt.Errorf("%w in %s", ErrNoDocuments, p.config.InputDir)
	}
	log.Info("found files to process", "count", len(files), "dir", p.config.InputDir)

	uploader := NewUploader(p.config.Index, p.config.BatchSize, log)
	uploader.OnBatch(func(res models.BatchResult) {
		p.emit(Event{Stage: StageUploading, Batch: &res})
	})

	finish := func() Summary {
		summary.Batches = uploader.Batches()
		summary.Attempted = uploader.Attempted()
		summary.Uploaded = uploader.Uploaded()
		summary.Failed = uploader.Failed()
		summary.Duration = time.Since(started)
		return summary
	}
	// queued documents are sent through the cancelled context, which
	// records them as one failed batch without calling the index
	abort := func(err error) (Summary, error) {
		log.Warn("ingestion cancelled", "error", err, "unsent", uploader.Pending())
		uploader.Flush(ctx)
		return finish(), err
	}

	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return abort(err)
		}

		built, err := p.processFile(ctx, log, file, i+1, len(files), &summary, uploader)
		if err != nil {
			return abort(err)
		}
		if built > 0 {
			summary.FilesProcessed++
		}
	}

	uploader.Flush(ctx)
	summary = finish()

	p.emit(Event{Stage: StageDone})
	log.Info("ingestion complete",
		"files", summary.FilesFound,
		"processed", summary.FilesProcessed,
		"skipped", summary.FilesSkipped,
		"documents", summary.DocumentsBuilt,
		"uploaded", summary.Uploaded,
		"failed", summary.Failed,
		"duration", summary.Duration)

	return summary, nil
}

// processFile returns the number of documents it handed to the uploader.
func (p *Pipeline) processFile(ctx context.Context, log *logger.Logger, file models.SourceFile, index, count int, summary *Summary, uploader *Uploader) (int, error) {
	log = log.With("file", file.Name)

	p.emit(Event{Stage: StageExtracting, File: file.Name, FileIndex: index, FileCount: count})
	text := p.config.Extractor.Extract(file)
	if strings.TrimSpace(text) == "" {
		log.Warn("no content extracted, skipping file")
		summary.FilesSkipped++
		return 0, nil
	}

	meta := p.config.Classifier.Classify(file.Name)
	log.Debug("classified file", "institution", meta.Institution, "type", meta.DocumentType, "year", meta.Year)

	p.emit(Event{Stage: StageChunking, File: file.Name, FileIndex: index, FileCount: count})
	result := p.config.Chunker.Split(text)
	if result.Truncated {
		summary.TruncatedFiles++
		log.Warn("document truncated at chunk limit", "chunks", len(result.Chunks), "tokens", result.TokenCount)
	}
	total := len(result.Chunks)
	summary.ChunksCreated += total
	log.Info("created chunks", "chunks", total, "tokens", result.TokenCount)

	built := 0
	for i, chunkText := range result.Chunks {
		if err := ctx.Err(); err != nil {
			return built, err
		}

		p.emit(Event{Stage: StageEmbedding, File: file.Name, FileIndex: index, FileCount: count, Chunk: i + 1, Chunks: total})
		vector := p.config.Embedder.Embed(ctx, chunkText)
		if len(vector) == 0 {
			log.Warn("failed to get embedding, dropping chunk", "chunk", i+1, "chunks", total)
			summary.ChunksDropped++
			continue
		}

		chunk := models.Chunk{Index: i, Total: total, Text: chunkText}
		doc := BuildDocument(file, meta, chunk, vector, p.config.Now())
		summary.DocumentsBuilt++
		built++
		uploader.Add(ctx, doc)
	}

	return built, nil
}
