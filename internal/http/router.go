// Package http is the device-facing surface of the bridge: the sync
// endpoint, the supporting Kobo protocol endpoints and a small admin
// listing API.
package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Database, cfg.AbsClient, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Admin listing passthrough
	if cfg.AbsClient != nil {
		libraryController := NewLibraryController(cfg.AbsClient, cfg.AdminAPIKey)
		router.GET("/v1/libraries", libraryController.ListLibraries)
		router.GET("/v1/libraries/:libraryID/items", libraryController.ListLibraryItems)
	}

	// Device protocol. The :authToken segment is the device id minted at
	// registration; the reader substitutes it into every path.
	device := router.Group("/kobo/:authToken/v1")

	if cfg.SyncService != nil {
		syncController := NewSyncController(cfg.SyncService)
		device.GET("/library/sync", syncController.Sync)
	}

	if cfg.Database != nil && cfg.AbsClient != nil {
		metadataController := NewMetadataController(cfg.Database, cfg.AbsClient, cfg.PublicURL)
		device.GET("/library/:bookID/metadata", metadataController.GetMetadata)

		downloadsController := NewDownloadsController(cfg.Database, cfg.AbsClient)
		device.GET("/download/:filename", downloadsController.DownloadEbook)
		device.GET("/books/:imageID/thumbnail/:width/:height/:quality/image.jpg", downloadsController.Thumbnail)
		device.GET("/books/:imageID/thumbnail/:width/:height/:quality/:isGreyscale/image.jpg", downloadsController.Thumbnail)
	}

	readingController := NewReadingStateController()
	device.GET("/library/:bookID/state", readingController.GetState)
	device.PUT("/library/:bookID/state", readingController.UpdateState)

	tagsController := NewTagsController()
	device.POST("/library/tags", tagsController.CreateTag)
	device.PUT("/library/tags/:tagID", tagsController.RenameTag)
	device.DELETE("/library/tags/:tagID", tagsController.DeleteTag)
	device.POST("/library/tags/:tagID/items", tagsController.AddTagItems)
	device.POST("/library/tags/:tagID/items/delete", tagsController.RemoveTagItems)

	deviceController := NewDeviceController()
	device.DELETE("/library/:bookID", deviceController.ArchiveBook)
	device.GET("/initialization", deviceController.Initialization)
	device.POST("/auth/device", deviceController.AuthDevice)

	return router
}
