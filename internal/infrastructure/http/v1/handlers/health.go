// Package handlers provides HTTP request handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mminv/internal/domain/inventory"
)

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	workspace *inventory.Workspace
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(ws *inventory.Workspace) *HealthHandler {
	return &HealthHandler{workspace: ws}
}

// Live handles liveness probe (is the process alive?).
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready handles readiness probe (are the change feeds attached?).
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if !h.workspace.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"checks": map[string]string{
				"change_stream": "not attached",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"checks": map[string]string{
			"change_stream": "attached",
		},
	})
}
