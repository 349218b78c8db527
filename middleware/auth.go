package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/api"
	"github.com/junaidrashid-git/storefront/auth"
)

// ValidateToken accepts "Bearer <jwt>" or a bare token and sets user_id and
// role on the context.
func ValidateToken(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
			return
		}

		claims, err := auth.ParseToken(secret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Set("email", claims.Email)
		c.Next()
	}
}

// RequireUser rejects guest tokens and sessions whose backend token has
// been evicted.
func RequireUser(sessions *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") == auth.RoleGuest {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Sign in required"})
			return
		}

		active, err := sessions.Active(c.Request.Context(), c.GetString("user_id"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session"})
			return
		}
		if !active {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    "session expired",
				"redirect": api.LoginRedirect,
			})
			return
		}
		c.Next()
	}
}
