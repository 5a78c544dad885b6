package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/arkdex/arkdex/internal/queryspec"
	"github.com/arkdex/arkdex/internal/record"
)

// Gateway talks to a ledger gateway node over HTTP. It implements both
// Client and QueryClient.
//
// Transport errors and 5xx responses are retried with exponential backoff
// plus jitter; 4xx responses are not retried. Retrying a ledger upload is
// safe: the ledger is content-addressed, so a duplicate write lands on the
// same transaction identity.
type Gateway struct {
	baseURL    string
	client     *http.Client
	maxRetries int
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) GatewayOption {
	return func(g *Gateway) { g.client = c }
}

// WithMaxRetries sets the retry budget for transport errors and 5xx.
func WithMaxRetries(n int) GatewayOption {
	return func(g *Gateway) { g.maxRetries = n }
}

// NewGateway creates a Gateway for the node at baseURL.
func NewGateway(baseURL string, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		baseURL:    baseURL,
		client:     &http.Client{Timeout: 30 * time.Second},
		maxRetries: 3,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// uploadBody is the wire form of an upload request.
type uploadBody struct {
	Data        []byte `json:"data"` // base64 via encoding/json
	Tags        []Tag  `json:"tags"`
	WantReceipt bool   `json:"wantReceipt,omitempty"`
}

// Upload writes a payload plus tags to the ledger and returns its identity.
func (g *Gateway) Upload(ctx context.Context, req UploadRequest) (UploadResult, error) {
	body, err := json.Marshal(uploadBody{
		Data:        req.Payload,
		Tags:        req.Tags,
		WantReceipt: req.WantReceipt,
	})
	if err != nil {
		return UploadResult{}, fmt.Errorf("encode upload: %w", err)
	}

	var result UploadResult
	if err := g.do(ctx, http.MethodPost, "/tx", body, &result); err != nil {
		return UploadResult{}, fmt.Errorf("upload: %w", err)
	}
	if result.ID == "" {
		return UploadResult{}, fmt.Errorf("upload: gateway returned no transaction id")
	}
	return result, nil
}

// Balance reports the account's spendable balance.
func (g *Gateway) Balance(ctx context.Context) (float64, error) {
	var resp struct {
		Balance float64 `json:"balance"`
	}
	if err := g.do(ctx, http.MethodGet, "/balance", nil, &resp); err != nil {
		return 0, fmt.Errorf("balance: %w", err)
	}
	return resp.Balance, nil
}

// Price reports the cost of storing sizeBytes.
func (g *Gateway) Price(ctx context.Context, sizeBytes int64) (float64, error) {
	var resp struct {
		Price float64 `json:"price"`
	}
	path := fmt.Sprintf("/price/%d", sizeBytes)
	if err := g.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return 0, fmt.Errorf("price: %w", err)
	}
	return resp.Price, nil
}

// Query runs a filter against the ledger's own index. The request and
// response shapes mirror the local query engine exactly.
func (g *Gateway) Query(ctx context.Context, opts queryspec.Options) (record.Page, error) {
	// Validate locally before going over the wire; the remote endpoint
	// honors the same vocabulary.
	if _, err := queryspec.Resolve(opts); err != nil {
		return record.Page{}, record.NewFailure(record.CodeQueryFailure, "invalid query options", err)
	}

	body, err := json.Marshal(opts)
	if err != nil {
		return record.Page{}, fmt.Errorf("encode query: %w", err)
	}

	var page record.Page
	if err := g.do(ctx, http.MethodPost, "/index/query", body, &page); err != nil {
		return record.Page{}, record.NewFailure(record.CodeQueryFailure, "remote query", err)
	}
	if page.Records == nil {
		page.Records = []record.ArtifactRecord{}
	}
	return page, nil
}

// do executes one request with the retry policy and decodes the JSON
// response into out.
func (g *Gateway) do(ctx context.Context, method, path string, body []byte, out any) error {
	var lastErr error

	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * 100 * time.Millisecond
			jitter := time.Duration(rand.Int63n(int64(50 * time.Millisecond)))
			select {
			case <-time.After(backoff + jitter):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
		if err != nil {
			return err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := g.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= 500 {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("gateway returned %s", resp.Status)
			continue
		}
		if resp.StatusCode >= 400 {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			resp.Body.Close()
			return fmt.Errorf("gateway rejected request: %s: %s", resp.Status, bytes.TrimSpace(msg))
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	return fmt.Errorf("after %d attempts: %w", g.maxRetries+1, lastErr)
}
