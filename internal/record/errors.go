package record

import (
	"errors"
	"fmt"
)

// FailureCode categorizes failures across the upload/index/query paths.
type FailureCode string

const (
	// CodeUploadFailure indicates the remote write did not succeed
	// (network error, remote rejection, insufficient balance). Nothing
	// was written locally; the whole operation is retryable.
	CodeUploadFailure FailureCode = "UPLOAD_FAILURE"

	// CodeIndexingFailure indicates the remote write succeeded but the
	// local index write failed. The artifact is safely on the ledger;
	// only the local indexing step needs to be retried.
	CodeIndexingFailure FailureCode = "INDEXING_FAILURE"

	// CodeQueryFailure indicates a store-level query error (malformed
	// predicate, storage corruption). Zero matches is never a failure.
	CodeQueryFailure FailureCode = "QUERY_FAILURE"

	// CodeStorageFailure indicates the store itself is unavailable or
	// corrupt.
	CodeStorageFailure FailureCode = "STORAGE_FAILURE"
)

// Failure is a kind-coded error with the original cause preserved.
//
// ID carries the remote transaction identity when one exists — for
// INDEXING_FAILURE it tells the caller which artifact is on the ledger
// but missing from the local index.
type Failure struct {
	Code    FailureCode
	Message string
	ID      string
	Err     error
}

func (f *Failure) Error() string {
	if f.ID != "" {
		return fmt.Sprintf("%s: %s (id=%s)", f.Code, f.Message, f.ID)
	}
	return fmt.Sprintf("%s: %s", f.Code, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// NewFailure wraps err with a failure code and message.
func NewFailure(code FailureCode, message string, err error) *Failure {
	return &Failure{Code: code, Message: message, Err: err}
}

func hasCode(err error, code FailureCode) bool {
	var f *Failure
	if errors.As(err, &f) {
		return f.Code == code
	}
	return false
}

// IsUploadFailure reports whether err is an UPLOAD_FAILURE.
func IsUploadFailure(err error) bool { return hasCode(err, CodeUploadFailure) }

// IsIndexingFailure reports whether err is an INDEXING_FAILURE.
func IsIndexingFailure(err error) bool { return hasCode(err, CodeIndexingFailure) }

// IsQueryFailure reports whether err is a QUERY_FAILURE.
func IsQueryFailure(err error) bool { return hasCode(err, CodeQueryFailure) }

// IsStorageFailure reports whether err is a STORAGE_FAILURE.
func IsStorageFailure(err error) bool { return hasCode(err, CodeStorageFailure) }
