package harness

// TraceEvent records the observable outcome of one scenario step, in
// execution order.
type TraceEvent struct {
	Type    string   `json:"type"`              // "upload", "query", "latest", "versions"
	Ref     string   `json:"ref,omitempty"`     // upload step ref, or dataset name
	ID      string   `json:"id,omitempty"`      // assigned transaction id
	IDs     []string `json:"ids,omitempty"`     // result ids, in returned order
	Cursor  string   `json:"cursor,omitempty"`  // pagination cursor, if any
	Outcome string   `json:"outcome"`           // "indexed", "upload_failure", "indexing_failure", "ok", "empty"
	Error   string   `json:"error,omitempty"`   // failure message, if any
}

// IndexRow is one record in the final index dump, oldest first.
type IndexRow struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"`
	Dataset   string `json:"dataset"`
	Split     string `json:"split"`
	Version   string `json:"version"`
	Owner     string `json:"owner"`
	Receipt   string `json:"receipt,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success: every step expectation and
	// every assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per executed step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation and assertion failures. Empty if Pass.
	Errors []string `json:"errors,omitempty"`

	// Index is the final index content, oldest first.
	Index []IndexRow `json:"index"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:  true,
		Trace: []TraceEvent{},
		Index: []IndexRow{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}
