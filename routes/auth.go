package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/auth"
	"github.com/junaidrashid-git/storefront/middleware"
)

// SetupAuthRoutes registers all "/auth/*" endpoints.
func SetupAuthRoutes(r *gin.Engine, d Deps) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/guest", auth.CreateGuestUser(d.JWTSecret, d.GuestTTL))
		authGroup.POST("/login", auth.Login(d.Sessions, d.JWTSecret, d.SessionTTL))
		authGroup.POST("/logout", middleware.ValidateToken(d.JWTSecret), auth.Logout(d.Sessions))
	}
}
