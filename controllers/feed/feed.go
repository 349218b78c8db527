package feedControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/feed"
)

// Dashboard is the part of the simulator the admin dashboard reads.
type Dashboard interface {
	Snapshot() feed.Snapshot
	Acknowledge(id string) bool
	AcknowledgeAll() int
}

// GET /admin/feed/ws
func Stream(hub *feed.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		// ServeWS answers the request itself when the upgrade fails.
		_ = hub.ServeWS(c.Writer, c.Request)
	}
}

// GET /admin/feed/snapshot
func Snapshot(dash Dashboard) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, dash.Snapshot())
	}
}

type AcknowledgeRequest struct {
	ID  string `json:"id"`
	All bool   `json:"all"`
}

// POST /admin/feed/notifications/ack
//
// Marks one notification, or all of them, as read.
func Acknowledge(dash Dashboard) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AcknowledgeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if req.All {
			n := dash.AcknowledgeAll()
			c.JSON(http.StatusOK, gin.H{"acknowledged": n})
			return
		}
		if req.ID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "id or all is required"})
			return
		}
		if !dash.Acknowledge(req.ID) {
			c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"acknowledged": 1})
	}
}
