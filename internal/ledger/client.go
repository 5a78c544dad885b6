// Package ledger defines the contract with the remote append-only ledger:
// the write sink that durably retains payloads and tags, and the read-only
// remote query endpoint that mirrors the local filter vocabulary.
//
// The repository coordinator depends only on the interfaces here; Gateway
// is one HTTP implementation of both.
package ledger

import (
	"context"

	"github.com/arkdex/arkdex/internal/queryspec"
	"github.com/arkdex/arkdex/internal/record"
)

// Tag is one name/value pair attached to an uploaded payload.
type Tag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// UploadRequest carries a payload plus its flat tag list to the ledger.
type UploadRequest struct {
	Payload     []byte
	Tags        []Tag
	WantReceipt bool
}

// UploadResult is the ledger's answer to a successful write.
// Receipt is present only when the request asked for one.
type UploadResult struct {
	ID      string `json:"id"`
	Receipt string `json:"receipt,omitempty"`
}

// Client is the remote ledger write sink.
//
// The ledger is append-only and content-addressed: an upload never replaces
// anything, and the returned ID is the permanent transaction identity.
// Implementations are treated as opaque, eventually-available collaborators.
type Client interface {
	Upload(ctx context.Context, req UploadRequest) (UploadResult, error)

	// Balance reports the account's spendable balance in the ledger's
	// native unit.
	Balance(ctx context.Context) (float64, error)

	// Price reports the cost of storing sizeBytes on the ledger.
	Price(ctx context.Context, sizeBytes int64) (float64, error)
}

// QueryClient is the read-only alternate data source: the remote ledger's
// own index, queried with the same filter vocabulary as the local store.
// Used as a fallback when the local index has not yet observed a record.
type QueryClient interface {
	Query(ctx context.Context, opts queryspec.Options) (record.Page, error)
}
