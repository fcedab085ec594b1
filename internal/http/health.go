package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Neutralizer/BookManipulator/internal/database"
)

type HealthResponse struct {
	Status   string            `json:"status"`
	Time     string            `json:"time"`
	Version  string            `json:"version,omitempty"`
	ReadOnly bool              `json:"read_only"`
	Checks   map[string]string `json:"checks"`
}

type HealthController struct {
	db       *database.Database
	version  string
	readOnly bool
}

func NewHealthController(db *database.Database, version string, readOnly bool) *HealthController {
	return &HealthController{
		db:       db,
		version:  version,
		readOnly: readOnly,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	health := HealthResponse{
		Status:   status,
		Time:     time.Now().Format(time.RFC3339),
		Version:  h.version,
		ReadOnly: h.readOnly,
		Checks:   checks,
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, health)
}

func (h *HealthController) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
