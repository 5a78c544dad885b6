package store

import (
	"context"
	"testing"

	"github.com/arkdex/arkdex/internal/record"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecord(id string, ts int64) record.ArtifactRecord {
	return record.ArtifactRecord{
		ID:        id,
		Timestamp: ts,
		Tags: record.Tags{
			App:         "arkdex",
			ContentType: "application/octet-stream",
			DatasetName: "mnist",
			Split:       "train",
			Version:     "1.0.0",
			Owner:       "alice",
			CreatedAt:   "2026-01-02T15:04:05Z",
		},
		CreatedAt: "2026-01-02T15:04:06Z",
	}
}

func TestUpsert_InsertsRecord(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Upsert(ctx, testRecord("tx-1", 1000)); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	got, err := s.GetByID(ctx, "tx-1")
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if got == nil {
		t.Fatal("record not found after upsert")
	}
	if got.Timestamp != 1000 {
		t.Errorf("Timestamp = %d, want 1000", got.Timestamp)
	}
	if got.Tags.DatasetName != "mnist" {
		t.Errorf("DatasetName = %q, want mnist", got.Tags.DatasetName)
	}
}

func TestUpsert_SameIDReplacesRow(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := testRecord("tx-1", 1000)
	if err := s.Upsert(ctx, first); err != nil {
		t.Fatalf("first Upsert() failed: %v", err)
	}

	second := testRecord("tx-1", 2000)
	second.Tags.Owner = "bob"
	second.Receipt = "proof"
	if err := s.Upsert(ctx, second); err != nil {
		t.Fatalf("second Upsert() failed: %v", err)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM artifacts WHERE id = 'tx-1'").Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("got %d rows for tx-1, want exactly 1", count)
	}

	got, err := s.GetByID(ctx, "tx-1")
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if got.Tags.Owner != "bob" {
		t.Errorf("Owner = %q, want bob (most recent upsert wins)", got.Tags.Owner)
	}
	if got.Timestamp != 2000 {
		t.Errorf("Timestamp = %d, want 2000", got.Timestamp)
	}
	if got.Receipt != "proof" {
		t.Errorf("Receipt = %q, want proof", got.Receipt)
	}
}

func TestUpsert_ExtraTagsRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := testRecord("tx-1", 1000)
	rec.Tags.Extra = map[string]string{"license": "CC-BY-4.0", "rows": "60000"}
	if err := s.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	got, err := s.GetByID(ctx, "tx-1")
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if got.Tags.Extra["license"] != "CC-BY-4.0" {
		t.Errorf("Extra[license] = %q, want CC-BY-4.0", got.Tags.Extra["license"])
	}
	if got.Tags.Extra["rows"] != "60000" {
		t.Errorf("Extra[rows] = %q, want 60000", got.Tags.Extra["rows"])
	}
}

func TestUpsert_AcceptsUnvalidatedTags(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// Tag validation belongs to the coordinator; the store takes the bag as-is.
	rec := record.ArtifactRecord{ID: "tx-bare", Timestamp: 1, CreatedAt: "2026-01-02T15:04:06Z"}
	if err := s.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert() of bare record failed: %v", err)
	}

	got, err := s.GetByID(ctx, "tx-bare")
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if got == nil {
		t.Fatal("bare record not found")
	}
}

func TestGetByID_AbsentIsNotError(t *testing.T) {
	s := openTestStore(t)

	got, err := s.GetByID(context.Background(), "no-such-tx")
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if got != nil {
		t.Errorf("got %+v, want nil for absent record", got)
	}
}
