package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/arkdex/arkdex/internal/record"
)

// recordView is the JSON shape of an indexed artifact in CLI output.
type recordView struct {
	ID          string            `json:"id"`
	Timestamp   int64             `json:"timestamp"`
	App         string            `json:"app"`
	ContentType string            `json:"contentType"`
	DatasetName string            `json:"datasetName"`
	Split       string            `json:"split"`
	Version     string            `json:"version"`
	Owner       string            `json:"owner"`
	CreatedAt   string            `json:"createdAt"`
	Receipt     string            `json:"receipt,omitempty"`
	Extra       map[string]string `json:"extra,omitempty"`
}

func toView(rec record.ArtifactRecord) recordView {
	return recordView{
		ID:          rec.ID,
		Timestamp:   rec.Timestamp,
		App:         rec.Tags.App,
		ContentType: rec.Tags.ContentType,
		DatasetName: rec.Tags.DatasetName,
		Split:       rec.Tags.Split,
		Version:     rec.Tags.Version,
		Owner:       rec.Tags.Owner,
		CreatedAt:   rec.CreatedAt,
		Receipt:     rec.Receipt,
		Extra:       rec.Tags.Extra,
	}
}

func toViews(recs []record.ArtifactRecord) []recordView {
	views := make([]recordView, len(recs))
	for i, rec := range recs {
		views[i] = toView(rec)
	}
	return views
}

// formatRecord renders one artifact as a text block.
func formatRecord(rec record.ArtifactRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", rec.ID)
	fmt.Fprintf(&b, "  dataset:  %s/%s@%s\n", rec.Tags.DatasetName, rec.Tags.Split, rec.Tags.Version)
	fmt.Fprintf(&b, "  owner:    %s\n", rec.Tags.Owner)
	fmt.Fprintf(&b, "  app:      %s (%s)\n", rec.Tags.App, rec.Tags.ContentType)
	fmt.Fprintf(&b, "  indexed:  %s\n", time.UnixMilli(rec.Timestamp).UTC().Format(time.RFC3339))
	if rec.Receipt != "" {
		fmt.Fprintf(&b, "  receipt:  %s\n", rec.Receipt)
	}
	if len(rec.Tags.Extra) > 0 {
		keys := make([]string, 0, len(rec.Tags.Extra))
		for k := range rec.Tags.Extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "  %s: %s\n", k, rec.Tags.Extra[k])
		}
	}
	return b.String()
}

// formatRecords renders a list of artifacts as text, newest first as given.
func formatRecords(recs []record.ArtifactRecord) string {
	if len(recs) == 0 {
		return "no artifacts found"
	}
	blocks := make([]string, len(recs))
	for i, rec := range recs {
		blocks[i] = formatRecord(rec)
	}
	return strings.TrimRight(strings.Join(blocks, "\n"), "\n")
}
