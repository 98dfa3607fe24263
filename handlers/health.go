package handlers

import (
	"net/http"

	"food-ordering-api/logging"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Ready answers 503 while the database is unreachable
func (h *Handler) Ready(c *gin.Context) {
	if err := h.db.Ping(c.Request.Context()); err != nil {
		logging.FromContext(c.Request.Context()).WithError(err).Warn("readiness check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "database": "ok"})
}
