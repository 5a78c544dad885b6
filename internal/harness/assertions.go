package harness

import "fmt"

// EvaluateAssertions checks every scenario assertion against the result's
// final index dump and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		var msg string
		switch a.Type {
		case AssertIndexCount:
			msg = assertIndexCount(result, i, &a)
		case AssertIndexContains:
			msg = assertIndexContains(result, i, &a)
		case AssertLineageOrder:
			msg = assertLineageOrder(result, i, &a)
		default:
			msg = fmt.Sprintf("assertions[%d]: unknown assertion type %q", i, a.Type)
		}
		if msg != "" {
			failures = append(failures, msg)
		}
	}
	return failures
}

func assertIndexCount(result *Result, index int, a *Assertion) string {
	if len(result.Index) != a.Count {
		return fmt.Sprintf("assertions[%d] index_count: expected %d records, got %d",
			index, a.Count, len(result.Index))
	}
	return ""
}

func assertIndexContains(result *Result, index int, a *Assertion) string {
	for _, row := range result.Index {
		if row.ID != a.ID {
			continue
		}
		if a.Dataset != "" && row.Dataset != a.Dataset {
			return fmt.Sprintf("assertions[%d] index_contains: %s has dataset %q, expected %q",
				index, a.ID, row.Dataset, a.Dataset)
		}
		if a.Version != "" && row.Version != a.Version {
			return fmt.Sprintf("assertions[%d] index_contains: %s has version %q, expected %q",
				index, a.ID, row.Version, a.Version)
		}
		return ""
	}
	return fmt.Sprintf("assertions[%d] index_contains: id %q not in final index", index, a.ID)
}

// assertLineageOrder checks the newest-first order of a dataset's records in
// the final index dump (which is oldest first).
func assertLineageOrder(result *Result, index int, a *Assertion) string {
	var got []string
	for i := len(result.Index) - 1; i >= 0; i-- {
		if result.Index[i].Dataset == a.Dataset {
			got = append(got, result.Index[i].ID)
		}
	}
	if !equalIDs(got, a.IDs) {
		return fmt.Sprintf("assertions[%d] lineage_order: expected %v, got %v", index, a.IDs, got)
	}
	return ""
}
