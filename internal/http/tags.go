package http

import (
	nethttp "net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TagsController implements the device's shelf protocol. Shelves are not
// mirrored anywhere, but the device retries forever on errors, so every
// call is acknowledged in the shape it expects.
type TagsController struct{}

func NewTagsController() *TagsController {
	return &TagsController{}
}

type tagCreateRequest struct {
	Name  string   `json:"Name"`
	Items []tagItem `json:"Items"`
}

type tagItem struct {
	RevisionID string `json:"RevisionId"`
	Type       string `json:"Type"`
}

type tagItemsRequest struct {
	Items []tagItem `json:"Items"`
}

// CreateTag handles POST /kobo/:authToken/v1/library/tags.
func (t *TagsController) CreateTag(c *gin.Context) {
	var req tagCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, nethttp.StatusBadRequest, "Invalid tag payload")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		errorJSON(c, nethttp.StatusBadRequest, "Name is required")
		return
	}

	c.JSON(nethttp.StatusCreated, uuid.NewString())
}

// RenameTag handles PUT /kobo/:authToken/v1/library/tags/:tagID.
func (t *TagsController) RenameTag(c *gin.Context) {
	c.Status(nethttp.StatusOK)
}

// DeleteTag handles DELETE /kobo/:authToken/v1/library/tags/:tagID.
func (t *TagsController) DeleteTag(c *gin.Context) {
	c.Status(nethttp.StatusOK)
}

// AddTagItems handles POST /kobo/:authToken/v1/library/tags/:tagID/items.
func (t *TagsController) AddTagItems(c *gin.Context) {
	var req tagItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, nethttp.StatusBadRequest, "Invalid items payload")
		return
	}
	c.Status(nethttp.StatusOK)
}

// RemoveTagItems handles POST /kobo/:authToken/v1/library/tags/:tagID/items/delete.
func (t *TagsController) RemoveTagItems(c *gin.Context) {
	var req tagItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, nethttp.StatusBadRequest, "Invalid items payload")
		return
	}
	c.Status(nethttp.StatusOK)
}
