// Package harness provides conformance testing for the repository
// coordinator.
//
// The harness loads YAML scenarios, executes them against a real coordinator
// wired to a scripted in-memory ledger and a fresh in-memory index, and
// validates the observable outcomes: which uploads indexed, what queries
// returned, and what the final index contains.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	steps:
//	  - upload:
//	      ref: first
//	      payload: "train-data"
//	      dataset: mnist
//	      split: train
//	      version: 1.0.0
//	      owner: alice
//	      app: trainer
//	      contentType: text/csv
//	      expect: indexed
//	  - query:
//	      dataset: mnist
//	      limit: 2
//	      expectIds: [tx-2, tx-1]
//	assertions:
//	  - type: index_count
//	    count: 2
//	  - type: index_contains
//	    id: tx-1
//	    dataset: mnist
//	  - type: lineage_order
//	    dataset: mnist
//	    ids: [tx-2, tx-1]
//
// # Deterministic Testing
//
// All scenarios execute with deterministic helpers to ensure reproducible
// results and golden snapshot comparison:
//
//   - Scripted ledger assigning sequential transaction ids (testutil.FakeLedger)
//   - Stepping wall clock, one second per indexed record (testutil.SteppingClock)
//   - In-memory SQLite database (isolated per scenario)
//
// This ensures identical traces across runs for golden file comparison.
//
// # Usage
//
// Load and run a scenario:
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/reupload.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
