package ledger

import (
	"sort"

	"github.com/arkdex/arkdex/internal/record"
)

// Wire tag names. These exact capitalized, hyphenated strings are the tag
// vocabulary shared with the remote ledger and every other client of it;
// changing one breaks interoperability.
const (
	TagApp         = "App"
	TagContentType = "Content-Type"
	TagDatasetName = "Dataset-Name"
	TagSplit       = "Split"
	TagVersion     = "Version"
	TagOwner       = "Owner"
	TagCreatedAt   = "Created-At"
)

// EncodeTags flattens a tag bag into the wire tag list. The seven required
// tags always come first, in vocabulary order; extension tags follow with
// their caller-supplied names.
func EncodeTags(t record.Tags) []Tag {
	tags := []Tag{
		{Name: TagApp, Value: t.App},
		{Name: TagContentType, Value: t.ContentType},
		{Name: TagDatasetName, Value: t.DatasetName},
		{Name: TagSplit, Value: t.Split},
		{Name: TagVersion, Value: t.Version},
		{Name: TagOwner, Value: t.Owner},
		{Name: TagCreatedAt, Value: t.CreatedAt},
	}
	// Sorted for deterministic wire output.
	names := make([]string, 0, len(t.Extra))
	for name := range t.Extra {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		tags = append(tags, Tag{Name: name, Value: t.Extra[name]})
	}
	return tags
}
