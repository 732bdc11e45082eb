package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionCounter reports how many flows are live.
type SessionCounter interface {
	Len() int
}

func Health(sessions SessionCounter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":         "ok",
			"message":        "gateway booking berjalan",
			"activeSessions": sessions.Len(),
		})
	}
}
