package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/arkdex/arkdex/internal/ledger"
)

// FakeLedger is an in-memory, scripted stand-in for the remote ledger
// write sink. It implements ledger.Client, assigns deterministic
// transaction ids ("tx-1", "tx-2", ...) in upload-call order, and can be
// told to fail specific payloads.
//
// Thread-safety: all methods are safe for concurrent use; uploads within a
// batch run concurrently in production code.
type FakeLedger struct {
	mu       sync.Mutex
	seq      int
	uploads  []ledger.UploadRequest
	failures map[string]error

	inFlight    int
	maxInFlight int

	BalanceValue float64
	PricePerByte float64
	Delay        time.Duration // optional per-upload latency
}

// NewFakeLedger creates an empty fake ledger.
func NewFakeLedger() *FakeLedger {
	return &FakeLedger{
		failures:     make(map[string]error),
		BalanceValue: 100,
		PricePerByte: 0.001,
	}
}

// FailPayload makes any upload of the given payload fail with err.
func (f *FakeLedger) FailPayload(payload string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[payload] = err
}

// Upload implements ledger.Client.
func (f *FakeLedger) Upload(ctx context.Context, req ledger.UploadRequest) (ledger.UploadResult, error) {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	delay := f.Delay
	failure := f.failures[string(req.Payload)]
	f.mu.Unlock()
	defer f.decrement()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ledger.UploadResult{}, ctx.Err()
		}
	}

	if failure != nil {
		return ledger.UploadResult{}, failure
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	result := ledger.UploadResult{ID: fmt.Sprintf("tx-%d", f.seq)}
	if req.WantReceipt {
		result.Receipt = "receipt-" + result.ID
	}
	f.uploads = append(f.uploads, req)
	return result, nil
}

func (f *FakeLedger) decrement() {
	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()
}

// Balance implements ledger.Client with the scripted balance.
func (f *FakeLedger) Balance(ctx context.Context) (float64, error) {
	return f.BalanceValue, nil
}

// Price implements ledger.Client: sizeBytes times the scripted per-byte
// price.
func (f *FakeLedger) Price(ctx context.Context, sizeBytes int64) (float64, error) {
	return float64(sizeBytes) * f.PricePerByte, nil
}

// Uploads returns a copy of the observed upload requests, in ledger order.
func (f *FakeLedger) Uploads() []ledger.UploadRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ledger.UploadRequest, len(f.uploads))
	copy(out, f.uploads)
	return out
}

// MaxInFlight reports the highest number of concurrent uploads observed.
func (f *FakeLedger) MaxInFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxInFlight
}
