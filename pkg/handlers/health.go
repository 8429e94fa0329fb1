package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/shift-roster-go/pkg/database"
)

// Health reports whether the database answers a ping
func (h *Handler) Health(c *gin.Context) {
	if err := database.Ping(h.DB); err != nil {
		h.Logger.WithError(err).Warn("Health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": "unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "database": "ok"})
}
