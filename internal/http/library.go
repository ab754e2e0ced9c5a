package http

import (
	"context"
	"log"
	nethttp "net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/kobobridge/internal/abs"
)

// LibraryLister exposes the library backend's listing surface.
type LibraryLister interface {
	GetLibraries(ctx context.Context, apiKey string) ([]abs.Library, error)
	ListLibraryItems(ctx context.Context, apiKey, libraryID string, limit, page int) (*abs.ItemsPage, error)
}

// LibraryController passes library listings through for operators
// inspecting what the bridge can see upstream.
type LibraryController struct {
	library LibraryLister
	apiKey  string
}

func NewLibraryController(library LibraryLister, apiKey string) *LibraryController {
	return &LibraryController{library: library, apiKey: apiKey}
}

// ListLibraries handles GET /v1/libraries.
func (l *LibraryController) ListLibraries(c *gin.Context) {
	libraries, err := l.library.GetLibraries(c.Request.Context(), l.apiKey)
	if err != nil {
		log.Printf("ERROR: failed to list libraries: %v", err)
		errorJSON(c, nethttp.StatusBadGateway, "Library backend unavailable")
		return
	}
	c.JSON(nethttp.StatusOK, libraries)
}

// ListLibraryItems handles GET /v1/libraries/:libraryID/items.
func (l *LibraryController) ListLibraryItems(c *gin.Context) {
	libraryID := c.Param("libraryID")
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil || page < 0 {
		page = 0
	}

	items, err := l.library.ListLibraryItems(c.Request.Context(), l.apiKey, libraryID, limit, page)
	if err != nil {
		log.Printf("ERROR: failed to list items of library %s: %v", libraryID, err)
		errorJSON(c, nethttp.StatusBadGateway, "Library backend unavailable")
		return
	}
	c.JSON(nethttp.StatusOK, items)
}
