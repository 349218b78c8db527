package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/auth"
)

// GET /user/searches/recent
func GetRecentSearches(sessions *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		searches, err := sessions.Searches(c.GetString("user_id")).List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load recent searches"})
			return
		}
		if searches == nil {
			searches = []string{}
		}
		c.JSON(http.StatusOK, gin.H{"searches": searches})
	}
}

// DELETE /user/searches/recent
func ClearRecentSearches(sessions *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := sessions.Searches(c.GetString("user_id")).Clear(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear recent searches"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Recent searches cleared"})
	}
}
