package queryspec

import (
	"fmt"
	"time"
)

// Resolve validates opts, applies defaults, and converts the ISO-8601 time
// bounds to epoch milliseconds.
//
// Defaults: SortBy=timestamp, SortOrder=desc, Limit=DefaultLimit.
func Resolve(opts Options) (Resolved, error) {
	r := Resolved{
		DatasetName: opts.DatasetName,
		Split:       opts.Split,
		Version:     opts.Version,
		ContentType: opts.ContentType,
		App:         opts.App,
		Owner:       opts.Owner,
		SortBy:      opts.SortBy,
		SortOrder:   opts.SortOrder,
		Limit:       opts.Limit,
		Cursor:      opts.Cursor,
	}

	switch r.SortBy {
	case "":
		r.SortBy = SortByTimestamp
	case SortByTimestamp, SortByCreatedAt:
	default:
		return Resolved{}, fmt.Errorf("invalid sortBy %q: must be %q or %q",
			r.SortBy, SortByTimestamp, SortByCreatedAt)
	}

	switch r.SortOrder {
	case "":
		r.SortOrder = OrderDesc
	case OrderAsc, OrderDesc:
	default:
		return Resolved{}, fmt.Errorf("invalid sortOrder %q: must be %q or %q",
			r.SortOrder, OrderAsc, OrderDesc)
	}

	switch {
	case r.Limit == 0:
		r.Limit = DefaultLimit
	case r.Limit == LimitAll:
	case r.Limit < 0:
		return Resolved{}, fmt.Errorf("invalid limit %d", r.Limit)
	}

	if opts.StartTime != "" {
		ms, err := parseMillis(opts.StartTime)
		if err != nil {
			return Resolved{}, fmt.Errorf("invalid startTime: %w", err)
		}
		r.StartMillis = ms
		r.HasStart = true
	}
	if opts.EndTime != "" {
		ms, err := parseMillis(opts.EndTime)
		if err != nil {
			return Resolved{}, fmt.Errorf("invalid endTime: %w", err)
		}
		r.EndMillis = ms
		r.HasEnd = true
	}

	return r, nil
}

// parseMillis converts an ISO-8601 timestamp to epoch milliseconds.
func parseMillis(s string) (int64, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0, fmt.Errorf("%q is not ISO-8601: %w", s, err)
	}
	return t.UnixMilli(), nil
}
