// Package queryspec defines the caller-facing query vocabulary for the
// local artifact index: conjunctive tag filters, time bounds, sorting, and
// cursor pagination. The SQL translation lives in querysql.
//
// The same vocabulary is accepted by the remote query client, so a caller
// can substitute the remote index for the local one without rewriting its
// filters.
package queryspec

// Sort fields.
const (
	SortByTimestamp = "timestamp"
	SortByCreatedAt = "createdAt"
)

// Sort orders.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// DefaultLimit is applied when Options.Limit is zero.
const DefaultLimit = 50

// LimitAll disables the page limit entirely. It is distinct from "limit
// unset": callers asking for every version of a lineage must not be
// silently truncated at DefaultLimit.
const LimitAll = -1

// Options is a structured filter/sort/limit/cursor request.
//
// All filter fields are optional and conjunctive: an absent field imposes
// no constraint. StartTime and EndTime are ISO-8601 strings converted to
// inclusive epoch-millisecond bounds on the record timestamp.
//
// Cursor is the stringified timestamp of the last record of the previous
// page; the next page starts strictly after it in the sort order. Ties in
// timestamp are not separately broken, so duplicate timestamps can skip or
// repeat a row at a page boundary. That is the documented behavior of the
// cursor format, kept for compatibility.
type Options struct {
	DatasetName string `json:"datasetName,omitempty"`
	Split       string `json:"split,omitempty"`
	Version     string `json:"version,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	App         string `json:"app,omitempty"`
	Owner       string `json:"owner,omitempty"`
	StartTime   string `json:"startTime,omitempty"` // ISO-8601, inclusive
	EndTime     string `json:"endTime,omitempty"`   // ISO-8601, inclusive

	SortBy    string `json:"sortBy,omitempty"`    // timestamp | createdAt
	SortOrder string `json:"sortOrder,omitempty"` // asc | desc
	Limit     int    `json:"limit,omitempty"`     // 0 = DefaultLimit, LimitAll = unbounded
	Cursor    string `json:"cursor,omitempty"`
}

// Resolved is an Options with defaults applied and time bounds converted,
// ready for SQL compilation.
type Resolved struct {
	DatasetName string
	Split       string
	Version     string
	ContentType string
	App         string
	Owner       string

	StartMillis int64 // inclusive; HasStart guards validity
	EndMillis   int64 // inclusive; HasEnd guards validity
	HasStart    bool
	HasEnd      bool

	SortBy    string
	SortOrder string
	Limit     int // DefaultLimit applied; LimitAll preserved
	Cursor    string
}

// Unbounded reports whether the resolved request disables the page limit.
func (r Resolved) Unbounded() bool {
	return r.Limit == LimitAll
}
