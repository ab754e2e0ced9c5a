package http

import (
	"context"
	"encoding/json"
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/kobobridge/internal/abs"
	"github.com/mrlokans/kobobridge/internal/kobo"
)

type fakeResolver struct {
	key string
	err error
}

func (f *fakeResolver) ResolveAPIKey(deviceID string) (string, error) {
	return f.key, f.err
}

type fakeItems struct {
	item *abs.LibraryItem
	err  error
}

func (f *fakeItems) GetItem(ctx context.Context, apiKey, itemID string) (*abs.LibraryItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.item, nil
}

func metadataTestRouter(resolver CredentialResolver, items ItemFetcher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	controller := NewMetadataController(resolver, items, "http://bridge")
	router.GET("/kobo/:authToken/v1/library/:bookID/metadata", controller.GetMetadata)
	return router
}

func TestMetadataController_GetMetadata(t *testing.T) {
	item := &abs.LibraryItem{
		ID:        testBookID,
		AddedAt:   1709280000,
		UpdatedAt: 1709366400,
		Media: abs.Media{
			EbookFormat: "epub",
			Metadata:    abs.ItemMetadata{Title: "The Colour of Magic", AuthorName: "Terry Pratchett"},
		},
	}

	t.Run("returns a single-element metadata array", func(t *testing.T) {
		router := metadataTestRouter(&fakeResolver{key: "abs-key"}, &fakeItems{item: item})

		w := httptest.NewRecorder()
		req, _ := nethttp.NewRequest("GET", "/kobo/device-1/v1/library/"+testBookID+"/metadata", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, nethttp.StatusOK, w.Code)

		var metadata []kobo.BookMetadata
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &metadata))
		require.Len(t, metadata, 1)
		assert.Equal(t, "The Colour of Magic", metadata[0].Title)
		assert.Equal(t, []string{"http://bridge/kobo/device-1/v1/download/" + testBookID + ".epub"}, metadata[0].DownloadURLs)
	})

	t.Run("unresolvable device yields 401", func(t *testing.T) {
		router := metadataTestRouter(&fakeResolver{key: ""}, &fakeItems{item: item})

		w := httptest.NewRecorder()
		req, _ := nethttp.NewRequest("GET", "/kobo/device-1/v1/library/"+testBookID+"/metadata", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, nethttp.StatusUnauthorized, w.Code)
	})

	t.Run("unknown item yields 404", func(t *testing.T) {
		router := metadataTestRouter(&fakeResolver{key: "abs-key"}, &fakeItems{err: abs.ErrNotFound})

		w := httptest.NewRecorder()
		req, _ := nethttp.NewRequest("GET", "/kobo/device-1/v1/library/"+testBookID+"/metadata", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, nethttp.StatusNotFound, w.Code)
	})

	t.Run("backend failure yields 502", func(t *testing.T) {
		router := metadataTestRouter(&fakeResolver{key: "abs-key"}, &fakeItems{err: errors.New("connection refused")})

		w := httptest.NewRecorder()
		req, _ := nethttp.NewRequest("GET", "/kobo/device-1/v1/library/"+testBookID+"/metadata", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, nethttp.StatusBadGateway, w.Code)
	})
}
