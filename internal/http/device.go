package http

import (
	nethttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DeviceController covers the device lifecycle endpoints outside the sync
// loop: the initialization resources document, the synthetic auth
// handshake and device-side archiving.
type DeviceController struct{}

func NewDeviceController() *DeviceController {
	return &DeviceController{}
}

// Initialization handles GET /kobo/:authToken/v1/initialization. The
// device substitutes the placeholders in the URL templates itself.
func (d *DeviceController) Initialization(c *gin.Context) {
	c.JSON(nethttp.StatusOK, gin.H{
		"Resources": gin.H{
			"image_host":                 "",
			"image_url_template":         "/kobo/{authToken}/v1/books/{ImageId}/thumbnail/{Width}/{Height}/false/image.jpg",
			"image_url_quality_template": "/kobo/{authToken}/v1/books/{ImageId}/thumbnail/{Width}/{Height}/{Quality}/{IsGreyscale}/image.jpg",
		},
	})
}

// AuthDevice handles POST /kobo/:authToken/v1/auth/device. The bridge has
// no real credential exchange with the store; it issues throwaway tokens
// and echoes the device's user key, which is all the reader checks.
func (d *DeviceController) AuthDevice(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		body = map[string]any{}
	}
	userKey, _ := body["UserKey"].(string)

	c.JSON(nethttp.StatusOK, gin.H{
		"AccessToken":  uuid.NewString(),
		"RefreshToken": uuid.NewString(),
		"TrackingId":   uuid.NewString(),
		"ExpiresIn":    3600,
		"TokenType":    "Bearer",
		"UserKey":      userKey,
	})
}

// ArchiveBook handles DELETE /kobo/:authToken/v1/library/:bookID. The
// library backend stays untouched when a reader removes a book locally.
func (d *DeviceController) ArchiveBook(c *gin.Context) {
	c.Status(nethttp.StatusNoContent)
}
