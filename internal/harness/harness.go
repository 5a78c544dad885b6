package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/arkdex/arkdex/internal/queryspec"
	"github.com/arkdex/arkdex/internal/record"
	"github.com/arkdex/arkdex/internal/repo"
	"github.com/arkdex/arkdex/internal/store"
	"github.com/arkdex/arkdex/internal/testutil"
)

// clockBase is the first instant the stepping clock reports. Every indexed
// record advances it by one second, so golden timestamps are predictable.
var clockBase = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// Harness executes scenario steps against a real coordinator.
type Harness struct {
	repo   *repo.Repository
	ledger *testutil.FakeLedger
	logger *slog.Logger

	lastCursor string
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory index and a fresh scripted
// ledger, so ids and timestamps are reproducible: the first indexed upload
// is always tx-1 at the clock base.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}

	fake := testutil.NewFakeLedger()
	clock := testutil.NewSteppingClock(clockBase, time.Second)

	r := repo.New(fake, st,
		repo.WithClock(clock.Now),
		repo.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		repo.WithBatchPacing(time.Millisecond),
	)
	defer r.Close()

	h := &Harness{
		repo:   r,
		ledger: fake,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	ctx := context.Background()
	result := NewResult()

	for i, step := range scenario.Steps {
		switch {
		case step.Upload != nil:
			err = h.executeUpload(ctx, i, step.Upload, result)
		case step.Query != nil:
			err = h.executeQuery(ctx, i, step.Query, result)
		case step.Latest != nil:
			err = h.executeLatest(ctx, i, step.Latest, result)
		case step.Versions != nil:
			err = h.executeVersions(ctx, i, step.Versions, result)
		}
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	if err := h.dumpIndex(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to dump final index: %w", err)
	}

	assertionErrors := EvaluateAssertions(result, scenario.Assertions)
	for _, msg := range assertionErrors {
		result.AddError(msg)
	}

	return result, nil
}

// executeUpload runs one upload through the coordinator and checks the
// expected outcome.
func (h *Harness) executeUpload(ctx context.Context, index int, step *UploadStep, result *Result) error {
	if step.Fail != "" {
		h.ledger.FailPayload(step.Payload, errors.New(step.Fail))
	}

	tags := record.Tags{
		App:         step.App,
		ContentType: step.ContentType,
		DatasetName: step.Dataset,
		Split:       step.Split,
		Version:     step.Version,
		Owner:       step.Owner,
		CreatedAt:   record.FormatTime(clockBase),
		Extra:       step.Extra,
	}

	rec, err := h.repo.UploadOne(ctx, []byte(step.Payload), tags, repo.UploadOptions{
		WantReceipt: step.Receipt,
	})

	event := TraceEvent{Type: "upload", Ref: step.Ref}
	switch {
	case err == nil:
		event.Outcome = ExpectIndexed
		event.ID = rec.ID
	case record.IsUploadFailure(err):
		event.Outcome = ExpectUploadFailure
		event.Error = failureMessage(err)
	case record.IsIndexingFailure(err):
		event.Outcome = ExpectIndexingFailure
		event.ID = failureID(err)
		event.Error = failureMessage(err)
	default:
		return fmt.Errorf("upload %q: unexpected error kind: %w", step.Ref, err)
	}
	result.Trace = append(result.Trace, event)

	expected := step.Expect
	if expected == "" {
		expected = ExpectIndexed
	}
	if event.Outcome != expected {
		result.AddError(fmt.Sprintf("steps[%d] upload %q: expected %s, got %s",
			index, step.Ref, expected, event.Outcome))
	}

	h.logger.Info("upload step completed", "step", index, "ref", step.Ref, "outcome", event.Outcome)
	return nil
}

// executeQuery runs a structured query and checks the returned id order.
func (h *Harness) executeQuery(ctx context.Context, index int, step *QueryStep, result *Result) error {
	cursor := ""
	if step.UseCursor {
		cursor = h.lastCursor
	}

	page, err := h.repo.Query(ctx, queryspec.Options{
		DatasetName: step.Dataset,
		Split:       step.Split,
		Version:     step.Version,
		ContentType: step.ContentType,
		App:         step.App,
		Owner:       step.Owner,
		StartTime:   step.StartTime,
		EndTime:     step.EndTime,
		SortBy:      step.SortBy,
		SortOrder:   step.SortOrder,
		Limit:       step.Limit,
		Cursor:      cursor,
	})
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	h.lastCursor = page.NextCursor

	event := TraceEvent{
		Type:    "query",
		IDs:     recordIDs(page.Records),
		Cursor:  page.NextCursor,
		Outcome: "ok",
	}
	if len(page.Records) == 0 {
		event.Outcome = "empty"
	}
	result.Trace = append(result.Trace, event)

	if !equalIDs(event.IDs, step.ExpectIds) {
		result.AddError(fmt.Sprintf("steps[%d] query: expected ids %v, got %v",
			index, step.ExpectIds, event.IDs))
	}
	if step.ExpectMore != (page.NextCursor != "") {
		result.AddError(fmt.Sprintf("steps[%d] query: expected more=%v, got cursor %q",
			index, step.ExpectMore, page.NextCursor))
	}

	return nil
}

// executeLatest resolves the latest version of a lineage.
func (h *Harness) executeLatest(ctx context.Context, index int, step *LineageStep, result *Result) error {
	rec, err := h.repo.LatestVersion(ctx, step.Dataset, step.Split)
	if err != nil {
		return fmt.Errorf("latest %q: %w", step.Dataset, err)
	}

	event := TraceEvent{Type: "latest", Ref: step.Dataset, Outcome: "ok"}
	if rec == nil {
		event.Outcome = "empty"
	} else {
		event.ID = rec.ID
	}
	result.Trace = append(result.Trace, event)

	if event.ID != step.ExpectID {
		result.AddError(fmt.Sprintf("steps[%d] latest %q: expected id %q, got %q",
			index, step.Dataset, step.ExpectID, event.ID))
	}

	return nil
}

// executeVersions resolves a full lineage, newest first.
func (h *Harness) executeVersions(ctx context.Context, index int, step *LineageStep, result *Result) error {
	recs, err := h.repo.AllVersions(ctx, step.Dataset, step.Split)
	if err != nil {
		return fmt.Errorf("versions %q: %w", step.Dataset, err)
	}

	event := TraceEvent{Type: "versions", Ref: step.Dataset, IDs: recordIDs(recs), Outcome: "ok"}
	if len(recs) == 0 {
		event.Outcome = "empty"
	}
	result.Trace = append(result.Trace, event)

	if !equalIDs(event.IDs, step.ExpectIds) {
		result.AddError(fmt.Sprintf("steps[%d] versions %q: expected ids %v, got %v",
			index, step.Dataset, step.ExpectIds, event.IDs))
	}

	return nil
}

// dumpIndex captures the final index content, oldest first, for assertions
// and golden comparison.
func (h *Harness) dumpIndex(ctx context.Context, result *Result) error {
	page, err := h.repo.Query(ctx, queryspec.Options{
		SortBy:    queryspec.SortByTimestamp,
		SortOrder: queryspec.OrderAsc,
		Limit:     queryspec.LimitAll,
	})
	if err != nil {
		return err
	}

	for _, rec := range page.Records {
		result.Index = append(result.Index, IndexRow{
			ID:        rec.ID,
			Timestamp: rec.Timestamp,
			Dataset:   rec.Tags.DatasetName,
			Split:     rec.Tags.Split,
			Version:   rec.Tags.Version,
			Owner:     rec.Tags.Owner,
			Receipt:   rec.Receipt,
		})
	}
	return nil
}

func recordIDs(recs []record.ArtifactRecord) []string {
	if len(recs) == 0 {
		return nil
	}
	ids := make([]string, len(recs))
	for i, rec := range recs {
		ids[i] = rec.ID
	}
	return ids
}

func equalIDs(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func failureMessage(err error) string {
	var f *record.Failure
	if errors.As(err, &f) {
		return f.Message
	}
	return err.Error()
}

func failureID(err error) string {
	var f *record.Failure
	if errors.As(err, &f) {
		return f.ID
	}
	return ""
}
