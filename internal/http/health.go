package http

import (
	"context"
	nethttp "net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/kobobridge/internal/abs"
	"github.com/mrlokans/kobobridge/internal/database"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

type HealthController struct {
	db        *database.Database
	absClient *abs.Client
	version   string
}

func NewHealthController(db *database.Database, absClient *abs.Client, version string) *HealthController {
	return &HealthController{
		db:        db,
		absClient: absClient,
		version:   version,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	if h.db != nil {
		sqlDB, err := h.db.DB.DB()
		if err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else if err := sqlDB.Ping(); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	if h.absClient != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		if _, err := h.absClient.GetStatus(ctx); err != nil {
			// Sync still partly works while the library backend is
			// down, so this only degrades the report.
			checks["audiobookshelf"] = "error: " + err.Error()
		} else {
			checks["audiobookshelf"] = "ok"
		}
	} else {
		checks["audiobookshelf"] = "not configured"
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}

	statusCode := nethttp.StatusOK
	if status != "healthy" {
		statusCode = nethttp.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}
