package repo

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkdex/arkdex/internal/queryspec"
	"github.com/arkdex/arkdex/internal/record"
	"github.com/arkdex/arkdex/internal/store"
	"github.com/arkdex/arkdex/internal/testutil"
)

func testTags(dataset, split, version string) record.Tags {
	return record.Tags{
		App:         "arkdex",
		ContentType: "application/octet-stream",
		DatasetName: dataset,
		Split:       split,
		Version:     version,
		Owner:       "alice",
		CreatedAt:   "2026-01-02T15:04:05Z",
	}
}

func newTestRepo(t *testing.T, opts ...Option) (*Repository, *testutil.FakeLedger, *store.Store) {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	fake := testutil.NewFakeLedger()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := testutil.NewSteppingClock(base, time.Second)

	defaults := []Option{
		WithClock(clock.Now),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithBatchPacing(time.Millisecond),
	}
	r := New(fake, st, append(defaults, opts...)...)
	return r, fake, st
}

func TestUploadOneIndexesRecord(t *testing.T) {
	r, fake, _ := newTestRepo(t)
	ctx := context.Background()

	rec, err := r.UploadOne(ctx, []byte("data"), testTags("mnist", "train", "1.0.0"), UploadOptions{WantReceipt: true})
	require.NoError(t, err)

	assert.Equal(t, "tx-1", rec.ID)
	assert.Equal(t, "receipt-tx-1", rec.Receipt)
	assert.NotZero(t, rec.Timestamp)
	assert.NotEmpty(t, rec.CreatedAt)

	// Indexed and immediately visible.
	got, err := r.GetByID(ctx, "tx-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec, *got)

	// The wire tag list carries the exact vocabulary.
	uploads := fake.Uploads()
	require.Len(t, uploads, 1)
	assert.Equal(t, "Dataset-Name", uploads[0].Tags[2].Name)
	assert.Equal(t, "mnist", uploads[0].Tags[2].Value)
}

func TestUploadOneNoReceiptUnlessRequested(t *testing.T) {
	r, _, _ := newTestRepo(t)

	rec, err := r.UploadOne(context.Background(), []byte("data"), testTags("mnist", "train", "1"), UploadOptions{})
	require.NoError(t, err)
	assert.Empty(t, rec.Receipt)
}

func TestUploadOneRemoteFailureLeavesNoLocalState(t *testing.T) {
	r, fake, _ := newTestRepo(t)
	ctx := context.Background()
	fake.FailPayload("bad", errors.New("ledger unavailable"))

	_, err := r.UploadOne(ctx, []byte("bad"), testTags("mnist", "train", "1"), UploadOptions{})

	require.Error(t, err)
	assert.True(t, record.IsUploadFailure(err))
	assert.False(t, record.IsIndexingFailure(err))

	page, err := r.Query(ctx, queryspec.Options{})
	require.NoError(t, err)
	assert.Empty(t, page.Records, "failed upload must not be indexed")
}

func TestUploadOneInvalidTagsRejectedBeforeRemoteWrite(t *testing.T) {
	r, fake, _ := newTestRepo(t)

	tags := testTags("mnist", "train", "1")
	tags.Owner = ""
	_, err := r.UploadOne(context.Background(), []byte("data"), tags, UploadOptions{})

	require.Error(t, err)
	assert.True(t, record.IsUploadFailure(err))
	assert.Empty(t, fake.Uploads(), "invalid tags must not reach the ledger")
}

func TestUploadOneIndexingFailureCarriesID(t *testing.T) {
	r, _, st := newTestRepo(t)

	// Closing the store makes the upsert fail after the remote write
	// already succeeded.
	require.NoError(t, st.Close())

	_, err := r.UploadOne(context.Background(), []byte("data"), testTags("mnist", "train", "1"), UploadOptions{})

	require.Error(t, err)
	assert.True(t, record.IsIndexingFailure(err))
	assert.False(t, record.IsUploadFailure(err))

	var failure *record.Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "tx-1", failure.ID, "indexing failure names the ledger transaction")
}

func TestUploadOneNormalizesTags(t *testing.T) {
	r, fake, _ := newTestRepo(t)

	tags := testTags("café", "train", "1") // decomposed é
	rec, err := r.UploadOne(context.Background(), []byte("data"), tags, UploadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "café", rec.Tags.DatasetName)
	uploads := fake.Uploads()
	require.Len(t, uploads, 1)
	assert.Equal(t, "café", uploads[0].Tags[2].Value)
}

func TestReindexRepairsMissingIndexEntry(t *testing.T) {
	r, _, _ := newTestRepo(t)
	ctx := context.Background()

	rec := record.ArtifactRecord{
		ID:        "tx-manual",
		Timestamp: 1234,
		Tags:      testTags("mnist", "train", "1"),
		CreatedAt: "2026-03-01T12:00:00Z",
	}
	require.NoError(t, r.Reindex(ctx, rec))

	got, err := r.GetByID(ctx, "tx-manual")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(1234), got.Timestamp)
}

func TestLatestVersionUsesTimestampNotVersionString(t *testing.T) {
	r, _, st := newTestRepo(t)
	ctx := context.Background()

	// A has the higher semantic version, B the higher timestamp.
	a := record.ArtifactRecord{ID: "tx-a", Timestamp: 100, Tags: testTags("mnist", "train", "2.0.0"), CreatedAt: "2026-01-01T00:00:00Z"}
	b := record.ArtifactRecord{ID: "tx-b", Timestamp: 200, Tags: testTags("mnist", "train", "1.0.0"), CreatedAt: "2026-01-02T00:00:00Z"}
	require.NoError(t, st.Upsert(ctx, a))
	require.NoError(t, st.Upsert(ctx, b))

	latest, err := r.LatestVersion(ctx, "mnist", "train")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "tx-b", latest.ID)
	assert.Equal(t, "1.0.0", latest.Tags.Version)
}

func TestLatestVersionAbsentLineage(t *testing.T) {
	r, _, _ := newTestRepo(t)

	latest, err := r.LatestVersion(context.Background(), "no-such-dataset", "")
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestAllVersionsIsNotTruncated(t *testing.T) {
	r, _, _ := newTestRepo(t)
	ctx := context.Background()

	items := make([]BatchItem, queryspec.DefaultLimit+5)
	for i := range items {
		items[i] = BatchItem{
			Payload: []byte{byte(i), byte(i >> 8)},
			Tags:    testTags("big-lineage", "train", "1"),
		}
	}
	_, err := r.UploadBatch(ctx, items, BatchOptions{BatchSize: 20})
	require.NoError(t, err)

	versions, err := r.AllVersions(ctx, "big-lineage", "train")
	require.NoError(t, err)
	assert.Len(t, versions, queryspec.DefaultLimit+5)

	// Newest first.
	for i := 1; i < len(versions); i++ {
		assert.GreaterOrEqual(t, versions[i-1].Timestamp, versions[i].Timestamp)
	}
}

func TestQueryNeverFailsOnZeroMatches(t *testing.T) {
	r, _, _ := newTestRepo(t)

	page, err := r.Query(context.Background(), queryspec.Options{DatasetName: "nothing-here"})
	require.NoError(t, err)
	assert.NotNil(t, page.Records)
	assert.Empty(t, page.Records)
	assert.Empty(t, page.NextCursor)
}

func TestBalanceAndPricePassThrough(t *testing.T) {
	r, fake, _ := newTestRepo(t)
	fake.BalanceValue = 42
	fake.PricePerByte = 0.5

	balance, err := r.Balance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, float64(42), balance)

	price, err := r.Price(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, float64(5), price)
}
