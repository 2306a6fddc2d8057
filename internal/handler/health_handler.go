package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"task-board-core/internal/service"
)

// HealthHandler reports process health. The board keeps working when
// persistence is abandoned, so that state is reported as degraded rather
// than unhealthy.
type HealthHandler struct {
	persistService service.PersistService
}

// NewHealthHandler creates a new instance of HealthHandler
func NewHealthHandler(persistService service.PersistService) *HealthHandler {
	return &HealthHandler{persistService: persistService}
}

// Health returns the service health status.
func (h *HealthHandler) Health(c *gin.Context) {
	status := "healthy"
	persistence := "ok"
	if h.persistService != nil && h.persistService.Failed() {
		status = "degraded"
		persistence = "abandoned"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      status,
		"persistence": persistence,
	})
}
