package http

import (
	"log"
	nethttp "net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// URLBuilder builds authenticated URLs against the library backend.
type URLBuilder interface {
	EbookDownloadURL(itemID, apiKey string) string
	CoverDownloadURL(itemID, apiKey string) string
}

// DownloadsController hands the device its book files and covers. The
// device cannot authenticate against the library backend itself, so the
// bridge resolves the owner's key and redirects to a token-carrying URL.
type DownloadsController struct {
	credentials CredentialResolver
	urls        URLBuilder
}

func NewDownloadsController(credentials CredentialResolver, urls URLBuilder) *DownloadsController {
	return &DownloadsController{credentials: credentials, urls: urls}
}

// DownloadEbook handles GET /kobo/:authToken/v1/download/:filename where
// filename is "<itemID>.<format>".
func (d *DownloadsController) DownloadEbook(c *gin.Context) {
	deviceID := c.Param("authToken")
	filename := c.Param("filename")

	itemID := filename
	if idx := strings.LastIndex(filename, "."); idx > 0 {
		itemID = filename[:idx]
	}

	apiKey, err := d.credentials.ResolveAPIKey(deviceID)
	if err != nil {
		log.Printf("ERROR: failed to resolve device %s: %v", deviceID, err)
		errorJSON(c, nethttp.StatusInternalServerError, "Failed to resolve device")
		return
	}
	if apiKey == "" {
		errorJSON(c, nethttp.StatusUnauthorized, "Invalid auth token")
		return
	}

	c.Redirect(nethttp.StatusFound, d.urls.EbookDownloadURL(itemID, apiKey))
}

// Thumbnail handles the cover URL template the initialization document
// advertises. Size and greyscale parameters are accepted but the library
// backend serves one cover size.
func (d *DownloadsController) Thumbnail(c *gin.Context) {
	deviceID := c.Param("authToken")
	imageID := c.Param("imageID")

	apiKey, err := d.credentials.ResolveAPIKey(deviceID)
	if err != nil {
		log.Printf("ERROR: failed to resolve device %s: %v", deviceID, err)
		errorJSON(c, nethttp.StatusInternalServerError, "Failed to resolve device")
		return
	}
	if apiKey == "" {
		errorJSON(c, nethttp.StatusUnauthorized, "Invalid auth token")
		return
	}

	c.Redirect(nethttp.StatusFound, d.urls.CoverDownloadURL(imageID, apiKey))
}
