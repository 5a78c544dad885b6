package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a coordinator conformance scenario: a sequence of
// operations against a fresh repository, with inline expectations, followed
// by assertions on the final index.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Steps are executed in order against one repository instance.
	// Each step sets exactly one of its operation fields.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final index after all steps ran.
	// Supported types: index_count, index_contains, lineage_order.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one scenario operation. Exactly one field must be set.
type Step struct {
	Upload   *UploadStep   `yaml:"upload,omitempty"`
	Query    *QueryStep    `yaml:"query,omitempty"`
	Latest   *LineageStep  `yaml:"latest,omitempty"`
	Versions *LineageStep  `yaml:"versions,omitempty"`
}

// Step expectation outcomes.
const (
	ExpectIndexed         = "indexed"
	ExpectUploadFailure   = "upload_failure"
	ExpectIndexingFailure = "indexing_failure"
)

// UploadStep uploads one payload through the coordinator.
type UploadStep struct {
	// Ref labels the step in the trace.
	Ref string `yaml:"ref"`

	// Payload is the artifact content. It doubles as the failure-scripting
	// key: the fake ledger fails payloads, not steps.
	Payload string `yaml:"payload"`

	Dataset     string            `yaml:"dataset"`
	Split       string            `yaml:"split"`
	Version     string            `yaml:"version"`
	Owner       string            `yaml:"owner"`
	App         string            `yaml:"app"`
	ContentType string            `yaml:"contentType"`
	Extra       map[string]string `yaml:"extra,omitempty"`

	// Receipt requests an inclusion proof from the ledger.
	Receipt bool `yaml:"receipt,omitempty"`

	// Fail scripts the ledger to reject this payload with the given message.
	Fail string `yaml:"fail,omitempty"`

	// Expect is the expected outcome: indexed (default), upload_failure, or
	// indexing_failure.
	Expect string `yaml:"expect,omitempty"`
}

// QueryStep runs a structured query and checks the returned ids.
type QueryStep struct {
	Dataset     string `yaml:"dataset,omitempty"`
	Split       string `yaml:"split,omitempty"`
	Version     string `yaml:"version,omitempty"`
	Owner       string `yaml:"owner,omitempty"`
	App         string `yaml:"app,omitempty"`
	ContentType string `yaml:"contentType,omitempty"`
	StartTime   string `yaml:"startTime,omitempty"`
	EndTime     string `yaml:"endTime,omitempty"`
	SortBy      string `yaml:"sortBy,omitempty"`
	SortOrder   string `yaml:"sortOrder,omitempty"`
	Limit       int    `yaml:"limit,omitempty"`

	// UseCursor continues from the cursor of the previous query step.
	UseCursor bool `yaml:"useCursor,omitempty"`

	// ExpectIds is the expected result, in order. An empty list asserts an
	// empty page.
	ExpectIds []string `yaml:"expectIds"`

	// ExpectMore asserts whether the page reports a continuation cursor.
	ExpectMore bool `yaml:"expectMore,omitempty"`
}

// LineageStep resolves the latest version or all versions of a dataset.
type LineageStep struct {
	Dataset string `yaml:"dataset"`
	Split   string `yaml:"split,omitempty"`

	// ExpectID is the expected latest id (latest steps only). Empty asserts
	// an empty lineage.
	ExpectID string `yaml:"expectId,omitempty"`

	// ExpectIds is the expected lineage, newest first (versions steps only).
	ExpectIds []string `yaml:"expectIds,omitempty"`
}

// Assertion validates the final index.
type Assertion struct {
	// Type is one of index_count, index_contains, lineage_order.
	Type string `yaml:"type"`

	// Count is the expected number of indexed records (index_count).
	Count int `yaml:"count,omitempty"`

	// ID is the expected record id (index_contains).
	ID string `yaml:"id,omitempty"`

	// Dataset scopes index_contains and lineage_order.
	Dataset string `yaml:"dataset,omitempty"`

	// Version is the expected version tag (index_contains).
	Version string `yaml:"version,omitempty"`

	// IDs is the expected lineage, newest first (lineage_order).
	IDs []string `yaml:"ids,omitempty"`
}

// Assertion type constants.
const (
	AssertIndexCount    = "index_count"
	AssertIndexContains = "index_contains"
	AssertLineageOrder  = "lineage_order"
)

// LoadScenario reads and parses a scenario YAML file. Returns an error if
// the file doesn't exist, is malformed, contains unknown fields (typos), or
// is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "expectId:" vs "expectIds:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateStep checks that exactly one operation is set and its fields are
// coherent.
func validateStep(index int, step *Step) error {
	set := 0
	if step.Upload != nil {
		set++
	}
	if step.Query != nil {
		set++
	}
	if step.Latest != nil {
		set++
	}
	if step.Versions != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("steps[%d]: exactly one of upload, query, latest, versions must be set", index)
	}

	switch {
	case step.Upload != nil:
		u := step.Upload
		if u.Ref == "" {
			return fmt.Errorf("steps[%d].upload: ref is required", index)
		}
		if u.Payload == "" {
			return fmt.Errorf("steps[%d].upload: payload is required", index)
		}
		switch u.Expect {
		case "", ExpectIndexed, ExpectUploadFailure, ExpectIndexingFailure:
		default:
			return fmt.Errorf("steps[%d].upload: unknown expect %q", index, u.Expect)
		}
	case step.Latest != nil:
		if step.Latest.Dataset == "" {
			return fmt.Errorf("steps[%d].latest: dataset is required", index)
		}
		if len(step.Latest.ExpectIds) > 0 {
			return fmt.Errorf("steps[%d].latest: expectIds is only valid on versions steps", index)
		}
	case step.Versions != nil:
		if step.Versions.Dataset == "" {
			return fmt.Errorf("steps[%d].versions: dataset is required", index)
		}
		if step.Versions.ExpectID != "" {
			return fmt.Errorf("steps[%d].versions: expectId is only valid on latest steps", index)
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertIndexCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for index_count", index)
		}
	case AssertIndexContains:
		if a.ID == "" {
			return fmt.Errorf("assertions[%d]: id is required for index_contains", index)
		}
	case AssertLineageOrder:
		if a.Dataset == "" {
			return fmt.Errorf("assertions[%d]: dataset is required for lineage_order", index)
		}
		if len(a.IDs) == 0 {
			return fmt.Errorf("assertions[%d]: ids list is required for lineage_order", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
