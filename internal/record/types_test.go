package record

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTags() Tags {
	return Tags{
		App:         "arkdex",
		ContentType: "application/octet-stream",
		DatasetName: "mnist",
		Split:       "train",
		Version:     "1.0.0",
		Owner:       "alice",
		CreatedAt:   "2026-01-02T15:04:05Z",
	}
}

func TestTagsValidate(t *testing.T) {
	require.NoError(t, validTags().Validate())
}

func TestTagsValidateMissingField(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Tags)
	}{
		{"app", func(tg *Tags) { tg.App = "" }},
		{"contentType", func(tg *Tags) { tg.ContentType = "" }},
		{"datasetName", func(tg *Tags) { tg.DatasetName = "" }},
		{"split", func(tg *Tags) { tg.Split = "" }},
		{"version", func(tg *Tags) { tg.Version = "" }},
		{"owner", func(tg *Tags) { tg.Owner = "" }},
		{"createdAt", func(tg *Tags) { tg.CreatedAt = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tags := validTags()
			tc.mutate(&tags)
			err := tags.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.name)
		})
	}
}

func TestTagsValidateBadCreatedAt(t *testing.T) {
	tags := validTags()
	tags.CreatedAt = "January 2nd"
	assert.Error(t, tags.Validate())
}

func TestMillis(t *testing.T) {
	instant := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, instant.UnixMilli(), Millis(instant))
}

func TestFormatTimeIsRFC3339UTC(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	instant := time.Date(2026, 1, 2, 10, 4, 5, 0, loc)
	assert.Equal(t, "2026-01-02T15:04:05Z", FormatTime(instant))
}

func TestFailureCodes(t *testing.T) {
	cause := errors.New("connection refused")
	upload := NewFailure(CodeUploadFailure, "remote write failed", cause)

	assert.True(t, IsUploadFailure(upload))
	assert.False(t, IsIndexingFailure(upload))
	assert.ErrorIs(t, upload, cause)
	assert.Contains(t, upload.Error(), "UPLOAD_FAILURE")
}

func TestFailureCodesThroughWrapping(t *testing.T) {
	idx := &Failure{Code: CodeIndexingFailure, Message: "index write failed", ID: "tx-1"}
	wrapped := errors.Join(errors.New("outer"), idx)

	assert.True(t, IsIndexingFailure(wrapped))
	assert.False(t, IsUploadFailure(wrapped))
	assert.Contains(t, idx.Error(), "tx-1")
}

func TestNormalizeTags(t *testing.T) {
	tags := validTags()
	// "e" + combining acute accent; NFC composes to a single rune.
	tags.DatasetName = "café"
	tags.Extra = map[string]string{"noté": "valué"}

	got := NormalizeTags(tags)

	assert.Equal(t, "café", got.DatasetName)
	assert.Equal(t, "valué", got.Extra["noté"])
	// Untouched fields pass through.
	assert.Equal(t, tags.Owner, got.Owner)
	// Input is not mutated.
	assert.Equal(t, "café", tags.DatasetName)
}
