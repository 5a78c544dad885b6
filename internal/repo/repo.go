// Package repo implements the repository coordinator: the single component
// callers interact with. It composes the remote ledger client and the local
// record store into upload-then-index operations and version-aware queries.
//
// Per-upload lifecycle: pending, remote write in flight, then either remote
// write failed (terminal, nothing written locally), or remote write
// succeeded and the indexing step runs, ending indexed or indexing failed.
// An indexing failure is partial success: the artifact is on the ledger and
// only the cheap local index write needs to be retried.
package repo

import (
	"context"
	"log/slog"
	"time"

	"github.com/arkdex/arkdex/internal/ledger"
	"github.com/arkdex/arkdex/internal/queryspec"
	"github.com/arkdex/arkdex/internal/record"
	"github.com/arkdex/arkdex/internal/store"
)

// Repository coordinates the remote ledger and the local index.
type Repository struct {
	ledger ledger.Client
	store  *store.Store
	now    func() time.Time
	log    *slog.Logger

	batchPacing time.Duration
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock replaces the wall clock used to stamp indexed records.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithLogger replaces the default logger.
func WithLogger(log *slog.Logger) Option {
	return func(r *Repository) { r.log = log }
}

// WithBatchPacing overrides the delay enforced between upload batches.
func WithBatchPacing(d time.Duration) Option {
	return func(r *Repository) { r.batchPacing = d }
}

// New creates a Repository over the given ledger client and record store.
func New(client ledger.Client, st *store.Store, opts ...Option) *Repository {
	r := &Repository{
		ledger:      client,
		store:       st,
		now:         time.Now,
		log:         slog.Default(),
		batchPacing: defaultBatchPacing,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Close releases the record store's underlying resources.
func (r *Repository) Close() error {
	return r.store.Close()
}

// UploadOptions controls a single upload.
type UploadOptions struct {
	// WantReceipt asks the ledger for a cryptographic inclusion proof.
	WantReceipt bool
}

// UploadOne writes payload to the remote ledger tagged with tags, then
// indexes the resulting record locally with Timestamp taken from the wall
// clock at indexing time.
//
// Failure kinds matter here: an UPLOAD_FAILURE means the artifact never
// reached the ledger and nothing was written locally; an INDEXING_FAILURE
// means the remote write succeeded but the index write did not — the
// returned failure carries the transaction id so the caller can retry
// indexing alone.
func (r *Repository) UploadOne(ctx context.Context, payload []byte, tags record.Tags, opts UploadOptions) (record.ArtifactRecord, error) {
	tags = record.NormalizeTags(tags)
	if err := tags.Validate(); err != nil {
		return record.ArtifactRecord{}, record.NewFailure(record.CodeUploadFailure, "invalid tags", err)
	}

	result, err := r.ledger.Upload(ctx, ledger.UploadRequest{
		Payload:     payload,
		Tags:        ledger.EncodeTags(tags),
		WantReceipt: opts.WantReceipt,
	})
	if err != nil {
		r.log.Error("remote write failed", "dataset", tags.DatasetName, "error", err)
		return record.ArtifactRecord{}, record.NewFailure(record.CodeUploadFailure, "remote write failed", err)
	}
	r.log.Debug("remote write succeeded", "id", result.ID, "dataset", tags.DatasetName)

	now := r.now()
	rec := record.ArtifactRecord{
		ID:        result.ID,
		Timestamp: record.Millis(now),
		Tags:      tags,
		Receipt:   result.Receipt,
		CreatedAt: record.FormatTime(now),
	}

	if err := r.store.Upsert(ctx, rec); err != nil {
		// The artifact is durably on the ledger; only the local index is
		// behind. Surface the id so indexing can be retried on its own.
		r.log.Error("indexing failed after successful remote write", "id", result.ID, "error", err)
		return record.ArtifactRecord{}, &record.Failure{
			Code:    record.CodeIndexingFailure,
			Message: "artifact is on the ledger but not locally indexed",
			ID:      result.ID,
			Err:     err,
		}
	}

	r.log.Info("artifact indexed", "id", rec.ID, "dataset", tags.DatasetName, "version", tags.Version)
	return rec, nil
}

// Reindex retries the indexing step for an artifact that reached the ledger
// but missed the local index (the repair path for an INDEXING_FAILURE).
func (r *Repository) Reindex(ctx context.Context, rec record.ArtifactRecord) error {
	if err := r.store.Upsert(ctx, rec); err != nil {
		return err
	}
	r.log.Info("artifact reindexed", "id", rec.ID)
	return nil
}

// Query runs a structured query against the local index. Always returns a
// page, even an empty one; zero matches is not an error.
func (r *Repository) Query(ctx context.Context, opts queryspec.Options) (record.Page, error) {
	return r.store.Query(ctx, opts)
}

// GetByID looks up one record by its ledger transaction identity.
// Returns nil when the record is absent.
func (r *Repository) GetByID(ctx context.Context, id string) (*record.ArtifactRecord, error) {
	return r.store.GetByID(ctx, id)
}

// LatestVersion returns the most recently indexed record of the
// datasetName (and, when non-empty, split) lineage, or nil when the
// lineage is empty.
//
// "Latest" means maximum timestamp. Version strings are opaque labels and
// are never parsed or compared.
func (r *Repository) LatestVersion(ctx context.Context, datasetName, split string) (*record.ArtifactRecord, error) {
	page, err := r.store.Query(ctx, queryspec.Options{
		DatasetName: datasetName,
		Split:       split,
		SortBy:      queryspec.SortByTimestamp,
		SortOrder:   queryspec.OrderDesc,
		Limit:       1,
	})
	if err != nil {
		return nil, err
	}
	if len(page.Records) == 0 {
		return nil, nil
	}
	return &page.Records[0], nil
}

// AllVersions returns every record of the lineage, newest first. The query
// is unbounded: a lineage longer than the default page size is never
// silently truncated.
func (r *Repository) AllVersions(ctx context.Context, datasetName, split string) ([]record.ArtifactRecord, error) {
	page, err := r.store.Query(ctx, queryspec.Options{
		DatasetName: datasetName,
		Split:       split,
		SortBy:      queryspec.SortByTimestamp,
		SortOrder:   queryspec.OrderDesc,
		Limit:       queryspec.LimitAll,
	})
	if err != nil {
		return nil, err
	}
	return page.Records, nil
}

// Balance reports the ledger account's spendable balance.
func (r *Repository) Balance(ctx context.Context) (float64, error) {
	return r.ledger.Balance(ctx)
}

// Price reports the ledger's cost for storing sizeBytes.
func (r *Repository) Price(ctx context.Context, sizeBytes int64) (float64, error) {
	return r.ledger.Price(ctx, sizeBytes)
}
