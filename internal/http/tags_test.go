package http

import (
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tagsTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	controller := NewTagsController()
	router.POST("/kobo/:authToken/v1/library/tags", controller.CreateTag)
	router.PUT("/kobo/:authToken/v1/library/tags/:tagID", controller.RenameTag)
	router.DELETE("/kobo/:authToken/v1/library/tags/:tagID", controller.DeleteTag)
	router.POST("/kobo/:authToken/v1/library/tags/:tagID/items", controller.AddTagItems)
	router.POST("/kobo/:authToken/v1/library/tags/:tagID/items/delete", controller.RemoveTagItems)
	return router
}

func TestTagsController_CreateTag(t *testing.T) {
	t.Run("returns a fresh tag id", func(t *testing.T) {
		router := tagsTestRouter()

		w := httptest.NewRecorder()
		req, _ := nethttp.NewRequest("POST", "/kobo/device-1/v1/library/tags", strings.NewReader(`{"Name": "To Read"}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, nethttp.StatusCreated, w.Code)

		var id string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &id))
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
	})

	t.Run("blank name yields 400", func(t *testing.T) {
		router := tagsTestRouter()

		w := httptest.NewRecorder()
		req, _ := nethttp.NewRequest("POST", "/kobo/device-1/v1/library/tags", strings.NewReader(`{"Name": "  "}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, nethttp.StatusBadRequest, w.Code)
	})
}

func TestTagsController_ShelfLifecycle(t *testing.T) {
	router := tagsTestRouter()

	t.Run("rename is acknowledged", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := nethttp.NewRequest("PUT", "/kobo/device-1/v1/library/tags/tag-1", strings.NewReader(`{"Name": "Reading"}`))
		router.ServeHTTP(w, req)
		assert.Equal(t, nethttp.StatusOK, w.Code)
	})

	t.Run("delete is acknowledged", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := nethttp.NewRequest("DELETE", "/kobo/device-1/v1/library/tags/tag-1", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, nethttp.StatusOK, w.Code)
	})

	t.Run("adding items is acknowledged", func(t *testing.T) {
		w := httptest.NewRecorder()
		body := `{"Items": [{"RevisionId": "` + testBookID + `", "Type": "ProductRevisionTagItem"}]}`
		req, _ := nethttp.NewRequest("POST", "/kobo/device-1/v1/library/tags/tag-1/items", strings.NewReader(body))
		router.ServeHTTP(w, req)
		assert.Equal(t, nethttp.StatusOK, w.Code)
	})

	t.Run("removing items is acknowledged", func(t *testing.T) {
		w := httptest.NewRecorder()
		body := `{"Items": [{"RevisionId": "` + testBookID + `", "Type": "ProductRevisionTagItem"}]}`
		req, _ := nethttp.NewRequest("POST", "/kobo/device-1/v1/library/tags/tag-1/items/delete", strings.NewReader(body))
		router.ServeHTTP(w, req)
		assert.Equal(t, nethttp.StatusOK, w.Code)
	})
}
