package store

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/kobobridge/internal/kobo"
)

func TestProxy_Sync(t *testing.T) {
	t.Run("rewrites the token header and passes the rest through", func(t *testing.T) {
		var seen http.Header
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = r.Header.Clone()
			w.Header().Set(kobo.SyncTokenHeader, "fresh-store-token")
			w.Header().Set(kobo.SyncContinueHeader, "continue")
			w.Header().Set(kobo.SyncModeHeader, "delta")
			w.Write([]byte(`[{"NewEntitlement":{}},{"ChangedEntitlement":{}}]`))
		}))
		defer server.Close()

		deviceHeaders := http.Header{}
		deviceHeaders.Set(kobo.SyncTokenHeader, "our-wrapped-token")
		deviceHeaders.Set("Authorization", "Bearer device-secret")
		deviceHeaders.Set("User-Agent", "Kobo Touch")

		proxy := NewProxy(server.URL, 5*time.Second)
		result, err := proxy.Sync(context.Background(), deviceHeaders, "raw-store-blob")

		require.NoError(t, err)
		assert.Equal(t, "raw-store-blob", seen.Get(kobo.SyncTokenHeader))
		assert.Equal(t, "Bearer device-secret", seen.Get("Authorization"))
		assert.Equal(t, "Kobo Touch", seen.Get("User-Agent"))

		assert.Len(t, result.Entitlements, 2)
		assert.Equal(t, "fresh-store-token", result.SyncToken)
		assert.Equal(t, "continue", result.SyncContinue)
		assert.Equal(t, "delta", result.SyncMode)
		assert.Empty(t, result.RecentReads)
	})

	t.Run("omits the token header when there is no raw token", func(t *testing.T) {
		var seen http.Header
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = r.Header.Clone()
			w.Write([]byte(`[]`))
		}))
		defer server.Close()

		deviceHeaders := http.Header{}
		deviceHeaders.Set(kobo.SyncTokenHeader, "our-wrapped-token")

		proxy := NewProxy(server.URL, 5*time.Second)
		_, err := proxy.Sync(context.Background(), deviceHeaders, "")

		require.NoError(t, err)
		assert.Empty(t, seen.Get(kobo.SyncTokenHeader))
	})

	t.Run("non-success status maps to upstream error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		proxy := NewProxy(server.URL, 5*time.Second)
		_, err := proxy.Sync(context.Background(), http.Header{}, "raw")

		assert.ErrorIs(t, err, ErrUpstream)
	})

	t.Run("unreachable backend maps to upstream error", func(t *testing.T) {
		proxy := NewProxy("http://127.0.0.1:1", 500*time.Millisecond)
		_, err := proxy.Sync(context.Background(), http.Header{}, "raw")

		assert.ErrorIs(t, err, ErrUpstream)
	})

	t.Run("garbage response body maps to upstream error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>not json</html>`))
		}))
		defer server.Close()

		proxy := NewProxy(server.URL, 5*time.Second)
		_, err := proxy.Sync(context.Background(), http.Header{}, "raw")

		assert.ErrorIs(t, err, ErrUpstream)
	})
}
