// Package record defines the shared artifact record model: the tag bag,
// the indexed record row, and the kind-coded errors used across the store,
// the query engine, and the repository coordinator.
package record

import (
	"fmt"
	"time"
)

// Tags is the tag bag attached to every uploaded artifact.
//
// The seven named fields are required and indexed; Extra carries any
// additional caller-supplied tags as opaque, unindexed key/value pairs.
// Tags.CreatedAt is caller-supplied at upload request time and is distinct
// from both ArtifactRecord.CreatedAt (local index insertion time) and
// ArtifactRecord.Timestamp (assigned at indexing time).
type Tags struct {
	App         string            `json:"app"`
	ContentType string            `json:"contentType"`
	DatasetName string            `json:"datasetName"`
	Split       string            `json:"split"`
	Version     string            `json:"version"`
	Owner       string            `json:"owner"`
	CreatedAt   string            `json:"createdAt"` // ISO-8601, caller-supplied
	Extra       map[string]string `json:"extra,omitempty"`
}

// Validate checks that all seven required tag fields are present.
// Validation is the coordinator's job; the store accepts whatever it is given.
func (t Tags) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"app", t.App},
		{"contentType", t.ContentType},
		{"datasetName", t.DatasetName},
		{"split", t.Split},
		{"version", t.Version},
		{"owner", t.Owner},
		{"createdAt", t.CreatedAt},
	}
	for _, f := range required {
		if f.value == "" {
			return fmt.Errorf("tags: required field %q is empty", f.name)
		}
	}
	if _, err := time.Parse(time.RFC3339, t.CreatedAt); err != nil {
		return fmt.Errorf("tags: createdAt %q is not ISO-8601: %w", t.CreatedAt, err)
	}
	return nil
}

// ArtifactRecord is one row of the local index: one uploaded artifact.
//
// ID equals the remote ledger's transaction identity and is immutable.
// Timestamp is epoch milliseconds assigned at indexing time. A record is
// never deleted; a second upsert with the same ID replaces the row.
type ArtifactRecord struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"`
	Tags      Tags   `json:"tags"`
	Receipt   string `json:"receipt,omitempty"`
	CreatedAt string `json:"createdAt"` // ISO-8601, local index insertion time
}

// Page is one page of query results plus the continuation cursor.
// An empty NextCursor signals end of results. The local store and the
// remote query client both return this shape, so either can serve the
// same filter vocabulary.
type Page struct {
	Records    []ArtifactRecord `json:"records"`
	NextCursor string           `json:"nextCursor,omitempty"`
}

// Millis converts a wall-clock instant to the epoch-millisecond form used
// by ArtifactRecord.Timestamp.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// FormatTime renders a wall-clock instant in the ISO-8601 form used by
// ArtifactRecord.CreatedAt and Tags.CreatedAt.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
