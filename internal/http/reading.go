package http

import (
	nethttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReadingStateController answers the device's reading-progress calls.
// Progress is acknowledged but not persisted; the device keeps its own
// copy and only needs the protocol-shaped acknowledgement.
type ReadingStateController struct{}

func NewReadingStateController() *ReadingStateController {
	return &ReadingStateController{}
}

// GetState handles GET /kobo/:authToken/v1/library/:bookID/state.
func (r *ReadingStateController) GetState(c *gin.Context) {
	bookID := c.Param("bookID")
	if _, err := uuid.Parse(bookID); err != nil {
		errorJSON(c, nethttp.StatusNotFound, "Invalid book UUID")
		return
	}

	c.JSON(nethttp.StatusOK, []gin.H{
		{"EntitlementId": bookID},
	})
}

type readingStateUpdate struct {
	ReadingStates []struct {
		CurrentBookmark *struct {
			Location                     map[string]any `json:"Location"`
			ContentSourceProgressPercent *float64       `json:"ContentSourceProgressPercent"`
		} `json:"CurrentBookmark"`
	} `json:"ReadingStates"`
}

// UpdateState handles PUT /kobo/:authToken/v1/library/:bookID/state. The
// device requires a per-section result document even though nothing is
// stored.
func (r *ReadingStateController) UpdateState(c *gin.Context) {
	bookID := c.Param("bookID")
	if _, err := uuid.Parse(bookID); err != nil {
		errorJSON(c, nethttp.StatusBadRequest, "Invalid book UUID")
		return
	}

	var update readingStateUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		errorJSON(c, nethttp.StatusBadRequest, "Invalid reading state payload")
		return
	}

	if len(update.ReadingStates) == 0 ||
		update.ReadingStates[0].CurrentBookmark == nil ||
		update.ReadingStates[0].CurrentBookmark.Location == nil ||
		update.ReadingStates[0].CurrentBookmark.ContentSourceProgressPercent == nil {
		errorJSON(c, nethttp.StatusBadRequest, "Missing Location or ContentSourceProgressPercent")
		return
	}

	c.JSON(nethttp.StatusOK, gin.H{
		"RequestResult": "Success",
		"UpdateResults": []gin.H{
			{
				"EntitlementId":         bookID,
				"CurrentBookmarkResult": gin.H{"Result": "Success"},
				"StatisticsResult":      gin.H{"Result": "Ignored"},
				"StatusInfoResult":      gin.H{"Result": "Success"},
			},
		},
	})
}
