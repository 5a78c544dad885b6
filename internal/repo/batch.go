package repo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/arkdex/arkdex/internal/record"
)

const (
	defaultBatchSize   = 10
	defaultBatchPacing = time.Second
)

// BatchItem is one artifact to upload as part of a batch.
type BatchItem struct {
	// SourceRef identifies the item to the caller (a file path, a job id);
	// it is echoed back on the item's result slot.
	SourceRef string
	Payload   []byte
	Tags      record.Tags
}

// BatchResult is the outcome of one batch item. Exactly one of
// Record/Err is meaningful: Err nil means the item was uploaded and
// indexed.
type BatchResult struct {
	SourceRef string
	Record    record.ArtifactRecord
	Err       error
}

// BatchOptions controls an UploadBatch call.
type BatchOptions struct {
	WantReceipt bool
	// BatchSize is the number of concurrent uploads per batch (default 10).
	BatchSize int
}

// UploadBatch uploads items in sequential batches of BatchSize. Within a
// batch all remote writes run concurrently; between batches a pacing delay
// (one second by default) respects the ledger's rate limits.
//
// Partial failure is the contract, not all-or-nothing: a failed item
// carries its error in its result slot and its batch siblings are
// unaffected. The call itself only fails if the batching mechanism does —
// a bad batch size, or the context ending between batches. Results always
// preserve input order: results[i] corresponds to items[i].
func (r *Repository) UploadBatch(ctx context.Context, items []BatchItem, opts BatchOptions) ([]BatchResult, error) {
	size := opts.BatchSize
	if size == 0 {
		size = defaultBatchSize
	}
	if size < 0 {
		return nil, fmt.Errorf("invalid batch size %d", size)
	}

	results := make([]BatchResult, len(items))
	if len(items) == 0 {
		return results, nil
	}

	// Token bucket paced at one batch per interval. The first Wait is
	// free; each later batch start is spaced at least one interval apart.
	pacer := rate.NewLimiter(rate.Every(r.batchPacing), 1)
	batchToken := uuid.Must(uuid.NewV7()).String()

	for start := 0; start < len(items); start += size {
		if err := pacer.Wait(ctx); err != nil {
			return nil, fmt.Errorf("batch pacing interrupted: %w", err)
		}

		end := min(start+size, len(items))
		r.log.Debug("uploading batch",
			"batch_token", batchToken,
			"from", start, "to", end-1, "total", len(items))

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				item := items[i]
				rec, err := r.UploadOne(ctx, item.Payload, item.Tags, UploadOptions{
					WantReceipt: opts.WantReceipt,
				})
				results[i] = BatchResult{SourceRef: item.SourceRef, Record: rec, Err: err}
			}(i)
		}
		wg.Wait()
	}

	return results, nil
}
