// Package store proxies sync requests to the real Kobo store backend so
// the device keeps receiving purchased-content changes alongside the
// bridged library.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mrlokans/kobobridge/internal/kobo"
)

// ErrUpstream indicates the store backend was unreachable or answered
// with a non-success status. The whole sync aborts on it.
var ErrUpstream = errors.New("kobo store upstream failure")

const syncPath = "/v1/library/sync"

// Result is what one upstream sync call yields: the store's own
// entitlement objects, kept opaque, plus its four control headers.
type Result struct {
	Entitlements []json.RawMessage
	SyncToken    string
	SyncContinue string
	SyncMode     string
	RecentReads  string
}

// Proxy forwards sync calls to the vendor store.
type Proxy struct {
	baseURL    string
	httpClient *http.Client
}

// NewProxy creates a proxy against the given store base URL with a bounded
// per-call timeout.
func NewProxy(baseURL string, timeout time.Duration) *Proxy {
	return &Proxy{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Sync performs one store sync call. The device's original headers are
// passed through except for the sync token header, which is replaced with
// the raw store portion of the device's token — the store must never see
// our own wrapper. Any transport error, timeout or non-2xx response maps
// to ErrUpstream.
func (p *Proxy) Sync(ctx context.Context, deviceHeaders http.Header, rawToken string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+syncPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Header names are compared canonicalized: net/http folds
	// "X-Kobo-SyncToken" to "X-Kobo-Synctoken" in parsed request headers.
	tokenHeader := http.CanonicalHeaderKey(kobo.SyncTokenHeader)
	for name, values := range deviceHeaders {
		if http.CanonicalHeaderKey(name) == tokenHeader {
			continue
		}
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	req.Host = ""
	if rawToken != "" {
		req.Header.Set(kobo.SyncTokenHeader, rawToken)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP %d", ErrUpstream, resp.StatusCode)
	}

	var entitlements []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&entitlements); err != nil {
		return nil, fmt.Errorf("%w: bad response body: %v", ErrUpstream, err)
	}

	return &Result{
		Entitlements: entitlements,
		SyncToken:    resp.Header.Get(kobo.SyncTokenHeader),
		SyncContinue: resp.Header.Get(kobo.SyncContinueHeader),
		SyncMode:     resp.Header.Get(kobo.SyncModeHeader),
		RecentReads:  resp.Header.Get(kobo.RecentReadsHeader),
	}, nil
}
