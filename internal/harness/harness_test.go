package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadStep(ref, payload, dataset, split, version string) Step {
	return Step{Upload: &UploadStep{
		Ref:         ref,
		Payload:     payload,
		Dataset:     dataset,
		Split:       split,
		Version:     version,
		Owner:       "alice",
		App:         "trainer",
		ContentType: "application/octet-stream",
	}}
}

func TestRunUploadAndLineage(t *testing.T) {
	scenario := &Scenario{
		Name:        "upload_and_lineage",
		Description: "two versions, latest wins by upload order",
		Steps: []Step{
			uploadStep("v2", "payload-v2", "mnist", "train", "2.0.0"),
			uploadStep("v1", "payload-v1", "mnist", "train", "1.0.0"),
			{Latest: &LineageStep{Dataset: "mnist", ExpectID: "tx-2"}},
			{Versions: &LineageStep{Dataset: "mnist", ExpectIds: []string{"tx-2", "tx-1"}}},
		},
		Assertions: []Assertion{
			{Type: AssertIndexCount, Count: 2},
			{Type: AssertIndexContains, ID: "tx-2", Dataset: "mnist", Version: "1.0.0"},
			{Type: AssertLineageOrder, Dataset: "mnist", IDs: []string{"tx-2", "tx-1"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace, 4)
	assert.Equal(t, "tx-1", result.Trace[0].ID)
	assert.Equal(t, "tx-2", result.Trace[1].ID)
}

func TestRunScriptedUploadFailure(t *testing.T) {
	failing := uploadStep("bad", "bad-data", "mnist", "train", "3.0.0")
	failing.Upload.Fail = "gateway unavailable"
	failing.Upload.Expect = ExpectUploadFailure

	scenario := &Scenario{
		Name:        "scripted_failure",
		Description: "a rejected upload leaves no local state",
		Steps: []Step{
			uploadStep("good", "good-data", "mnist", "train", "1.0.0"),
			failing,
			{Versions: &LineageStep{Dataset: "mnist", ExpectIds: []string{"tx-1"}}},
		},
		Assertions: []Assertion{
			{Type: AssertIndexCount, Count: 1},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, ExpectUploadFailure, result.Trace[1].Outcome)
	assert.Equal(t, "", result.Trace[1].ID)
}

func TestRunExpectationMismatchFailsScenario(t *testing.T) {
	scenario := &Scenario{
		Name:        "mismatch",
		Description: "wrong expectation is reported, not swallowed",
		Steps: []Step{
			uploadStep("ok", "data", "mnist", "train", "1.0.0"),
			{Latest: &LineageStep{Dataset: "mnist", ExpectID: "tx-99"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], `expected id "tx-99"`)
}

func TestRunQueryPaginationAcrossSteps(t *testing.T) {
	scenario := &Scenario{
		Name:        "pagination",
		Description: "a second query continues from the first page's cursor",
		Steps: []Step{
			uploadStep("a", "payload-a", "mnist", "train", "1"),
			uploadStep("b", "payload-b", "mnist", "train", "2"),
			uploadStep("c", "payload-c", "mnist", "train", "3"),
			{Query: &QueryStep{
				Dataset:    "mnist",
				Limit:      2,
				ExpectIds:  []string{"tx-3", "tx-2"},
				ExpectMore: true,
			}},
			{Query: &QueryStep{
				Dataset:   "mnist",
				Limit:     2,
				UseCursor: true,
				ExpectIds: []string{"tx-1"},
			}},
		},
		Assertions: []Assertion{
			{Type: AssertIndexCount, Count: 3},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.NotEmpty(t, result.Trace[3].Cursor)
	assert.Empty(t, result.Trace[4].Cursor)
}

func TestRunEmptyQueryIsNotAnError(t *testing.T) {
	scenario := &Scenario{
		Name:        "empty_query",
		Description: "zero matches yields an empty page",
		Steps: []Step{
			uploadStep("only", "data", "mnist", "train", "1"),
			{Query: &QueryStep{Dataset: "absent"}},
			{Latest: &LineageStep{Dataset: "absent"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "empty", result.Trace[1].Outcome)
	assert.Equal(t, "empty", result.Trace[2].Outcome)
}

func TestRunFinalIndexDump(t *testing.T) {
	withReceipt := uploadStep("r", "receipt-data", "cifar", "test", "1.0.0")
	withReceipt.Upload.Receipt = true

	scenario := &Scenario{
		Name:        "index_dump",
		Description: "final index reflects every indexed record, oldest first",
		Steps: []Step{
			uploadStep("first", "data-1", "mnist", "train", "1"),
			withReceipt,
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.Len(t, result.Index, 2)
	assert.Equal(t, "tx-1", result.Index[0].ID)
	assert.Equal(t, "tx-2", result.Index[1].ID)
	assert.Less(t, result.Index[0].Timestamp, result.Index[1].Timestamp)
	assert.Equal(t, "receipt-tx-2", result.Index[1].Receipt)
}

func TestEvaluateAssertionsFailures(t *testing.T) {
	result := &Result{
		Index: []IndexRow{
			{ID: "tx-1", Dataset: "mnist", Version: "1"},
			{ID: "tx-2", Dataset: "mnist", Version: "2"},
		},
	}

	failures := EvaluateAssertions(result, []Assertion{
		{Type: AssertIndexCount, Count: 3},
		{Type: AssertIndexContains, ID: "tx-9"},
		{Type: AssertIndexContains, ID: "tx-1", Version: "9"},
		{Type: AssertLineageOrder, Dataset: "mnist", IDs: []string{"tx-1", "tx-2"}},
		{Type: AssertIndexContains, ID: "tx-2", Dataset: "mnist", Version: "2"},
	})

	require.Len(t, failures, 4)
	assert.Contains(t, failures[0], "expected 3 records")
	assert.Contains(t, failures[1], `id "tx-9" not in final index`)
	assert.Contains(t, failures[2], `has version "1"`)
	assert.Contains(t, failures[3], "lineage_order")
}
