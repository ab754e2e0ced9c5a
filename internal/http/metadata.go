package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	nethttp "net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/kobobridge/internal/abs"
	"github.com/mrlokans/kobobridge/internal/kobo"
)

// CredentialResolver maps a device token to its owner's library API key.
type CredentialResolver interface {
	ResolveAPIKey(deviceID string) (string, error)
}

// ItemFetcher fetches a single library item.
type ItemFetcher interface {
	GetItem(ctx context.Context, apiKey, itemID string) (*abs.LibraryItem, error)
}

// MetadataController serves single-book metadata lookups the device makes
// after a sync delivered an entitlement.
type MetadataController struct {
	credentials CredentialResolver
	items       ItemFetcher
	publicURL   string
}

func NewMetadataController(credentials CredentialResolver, items ItemFetcher, publicURL string) *MetadataController {
	return &MetadataController{
		credentials: credentials,
		items:       items,
		publicURL:   strings.TrimRight(publicURL, "/"),
	}
}

// GetMetadata handles GET /kobo/:authToken/v1/library/:bookID/metadata.
// The device expects an array holding exactly one metadata object.
func (m *MetadataController) GetMetadata(c *gin.Context) {
	deviceID := c.Param("authToken")
	bookID := c.Param("bookID")

	apiKey, err := m.credentials.ResolveAPIKey(deviceID)
	if err != nil {
		log.Printf("ERROR: failed to resolve device %s: %v", deviceID, err)
		errorJSON(c, nethttp.StatusInternalServerError, "Failed to resolve device")
		return
	}
	if apiKey == "" {
		errorJSON(c, nethttp.StatusUnauthorized, "Invalid auth token")
		return
	}

	item, err := m.items.GetItem(c.Request.Context(), apiKey, bookID)
	if errors.Is(err, abs.ErrNotFound) {
		errorJSON(c, nethttp.StatusNotFound, "Item not found")
		return
	}
	if err != nil {
		log.Printf("ERROR: failed to fetch item %s: %v", bookID, err)
		errorJSON(c, nethttp.StatusBadGateway, "Library backend unavailable")
		return
	}

	downloadURL := fmt.Sprintf("%s/kobo/%s/v1/download/%s.%s", m.publicURL, deviceID, item.ID, item.Media.EbookFormat)
	book, err := kobo.NewSyncedBook(*item, []string{downloadURL})
	if err != nil {
		log.Printf("ERROR: failed to map item %s: %v", bookID, err)
		errorJSON(c, nethttp.StatusInternalServerError, "Failed to map item")
		return
	}

	c.JSON(nethttp.StatusOK, []kobo.BookMetadata{book.BookMetadata})
}
