package queryspec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDefaults(t *testing.T) {
	r, err := Resolve(Options{})
	require.NoError(t, err)

	assert.Equal(t, SortByTimestamp, r.SortBy)
	assert.Equal(t, OrderDesc, r.SortOrder)
	assert.Equal(t, DefaultLimit, r.Limit)
	assert.False(t, r.HasStart)
	assert.False(t, r.HasEnd)
	assert.False(t, r.Unbounded())
}

func TestResolvePreservesFilters(t *testing.T) {
	r, err := Resolve(Options{
		DatasetName: "mnist",
		Split:       "train",
		Version:     "2.0.0",
		ContentType: "application/x-parquet",
		App:         "arkdex",
		Owner:       "alice",
		SortBy:      SortByCreatedAt,
		SortOrder:   OrderAsc,
		Limit:       7,
		Cursor:      "2000",
	})
	require.NoError(t, err)

	assert.Equal(t, "mnist", r.DatasetName)
	assert.Equal(t, "train", r.Split)
	assert.Equal(t, "2.0.0", r.Version)
	assert.Equal(t, "application/x-parquet", r.ContentType)
	assert.Equal(t, "arkdex", r.App)
	assert.Equal(t, "alice", r.Owner)
	assert.Equal(t, SortByCreatedAt, r.SortBy)
	assert.Equal(t, OrderAsc, r.SortOrder)
	assert.Equal(t, 7, r.Limit)
	assert.Equal(t, "2000", r.Cursor)
}

func TestResolveTimeBounds(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	r, err := Resolve(Options{
		StartTime: start.Format(time.RFC3339),
		EndTime:   end.Format(time.RFC3339),
	})
	require.NoError(t, err)

	assert.True(t, r.HasStart)
	assert.True(t, r.HasEnd)
	assert.Equal(t, start.UnixMilli(), r.StartMillis)
	assert.Equal(t, end.UnixMilli(), r.EndMillis)
}

func TestResolveLimitAll(t *testing.T) {
	r, err := Resolve(Options{Limit: LimitAll})
	require.NoError(t, err)
	assert.True(t, r.Unbounded())
	assert.Equal(t, LimitAll, r.Limit)
}

func TestResolveRejectsBadInputs(t *testing.T) {
	cases := []struct {
		name string
		opts Options
	}{
		{"bad sortBy", Options{SortBy: "version"}},
		{"bad sortOrder", Options{SortOrder: "descending"}},
		{"negative limit", Options{Limit: -2}},
		{"bad startTime", Options{StartTime: "yesterday"}},
		{"bad endTime", Options{EndTime: "2026-13-99"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Resolve(tc.opts)
			assert.Error(t, err)
		})
	}
}
