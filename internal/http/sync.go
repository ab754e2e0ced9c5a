package http

import (
	"context"
	"errors"
	"log"
	nethttp "net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/kobobridge/internal/kobo"
	"github.com/mrlokans/kobobridge/internal/sync"
)

// Syncer runs one sync cycle for a device.
type Syncer interface {
	HandleSync(ctx context.Context, deviceID string, headers nethttp.Header) (*sync.Result, error)
}

// SyncController serves the device's incremental library sync.
type SyncController struct {
	syncer Syncer
}

func NewSyncController(syncer Syncer) *SyncController {
	return &SyncController{syncer: syncer}
}

// Sync handles GET /kobo/:authToken/v1/library/sync. The body is the
// merged entitlement array; the four vendor control headers ride on the
// response.
func (s *SyncController) Sync(c *gin.Context) {
	deviceID := c.Param("authToken")

	result, err := s.syncer.HandleSync(c.Request.Context(), deviceID, c.Request.Header)
	if err != nil {
		switch {
		case errors.Is(err, sync.ErrMissingToken):
			errorJSON(c, nethttp.StatusUnauthorized, "Kobo sync token is required")
		case errors.Is(err, kobo.ErrTokenDecode):
			errorJSON(c, nethttp.StatusForbidden, "Invalid Kobo sync token")
		case errors.Is(err, sync.ErrUpstream):
			log.Printf("ERROR: sync for device %s failed upstream: %v", deviceID, err)
			errorJSON(c, nethttp.StatusBadGateway, "Upstream sync failure")
		default:
			log.Printf("ERROR: sync for device %s failed: %v", deviceID, err)
			errorJSON(c, nethttp.StatusInternalServerError, "Sync failed")
		}
		return
	}

	c.Header(kobo.SyncTokenHeader, result.SyncToken)
	if result.SyncContinue != "" {
		c.Header(kobo.SyncContinueHeader, result.SyncContinue)
	}
	if result.SyncMode != "" {
		c.Header(kobo.SyncModeHeader, result.SyncMode)
	}
	if result.RecentReads != "" {
		c.Header(kobo.RecentReadsHeader, result.RecentReads)
	}

	c.JSON(nethttp.StatusOK, result.Entitlements)
}
