package ingest

import (
	"context"

	"github.com/xhad/stressdocs/internal/models"
	"github.com/xhad/stressdocs/internal/types"
	"github.com/xhad/stressdocs/pkg/logger"
)

const DefaultBatchSize = 8

// Uploader buffers documents and sends them to the index in fixed-size
// batches. Batches span files, so boundaries depend only on document
// order.
type Uploader struct {
	index     types.Index
	batchSize int
	log       *logger.Logger
	onBatch   func(models.BatchResult)

	pending   []models.IndexedDocument
	batches   int
	uploaded  int
	failed    int
	attempted int
}

func NewUploader(index types.Index, batchSize int, log *logger.Logger) *Uploader {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Uploader{
		index:     index,
		batchSize: batchSize,
		log:       log,
		pending:   make([]models.IndexedDocument, 0, batchSize),
	}
}

// OnBatch registers a callback invoked after every batch.
func (u *Uploader) OnBatch(fn func(models.BatchResult)) {
	u.onBatch = fn
}

// Add queues doc and sends a batch once batchSize documents are waiting.
func (u *Uploader) Add(ctx context.Context, doc models.IndexedDocument) {
	u.pending = append(u.pending, doc)
	if len(u.pending) >= u.batchSize {
		u.send(ctx)
	}
}

// Flush sends whatever is still queued.
func (u *Uploader) Flush(ctx context.Context) {
	if len(u.pending) > 0 {
		u.send(ctx)
	}
}

func (u *Uploader) send(ctx context.Context) {
	batch := u.pending
	u.pending = make([]models.IndexedDocument, 0, u.batchSize)
	u.batches++

	var res models.BatchResult
	if err := ctx.Err(); err != nil {
		res = models.FailedBatch(batch, err)
	} else {
		res = u.index.Upload(ctx, batch)
	}
	res.Number = u.batches

	// keep Succeeded + Failed == len(batch) whatever the backend reported
	if len(res.Items) != len(batch) {
		u.log.Warn("index returned a mismatched item count", "batch", res.Number, "sent", len(batch), "received", len(res.Items))
		err := res.Err
		if err == nil {
			err = errMismatchedResults
		}
		res = models.FailedBatch(batch, err)
		res.Number = u.batches
	}

	u.attempted += len(batch)
	u.uploaded += res.Succeeded
	u.failed += res.Failed

	if res.Err != nil {
		u.log.Error("failed to upload batch", "batch", res.Number, "documents", len(batch), "error", res.Err)
	} else {
		u.log.Info("uploaded batch", "batch", res.Number, "succeeded", res.Succeeded, "failed", res.Failed)
	}
	for _, item := range res.Items {
		if !item.Succeeded && res.Err == nil {
			u.log.Warn("document rejected by index", "id", item.Key, "reason", item.Message)
		}
	}

	if u.onBatch != nil {
		u.onBatch(res)
	}
}

func (u *Uploader) Batches() int   { return u.batches }
func (u *Uploader) Uploaded() int  { return u.uploaded }
func (u *Uploader) Failed() int    { return u.failed }
func (u *Uploader) Attempted() int { return u.attempted }
func (u *Uploader) Pending() int   { return len(u.pending) }
