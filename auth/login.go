package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/api"
	"github.com/junaidrashid-git/storefront/cart"
	"github.com/junaidrashid-git/storefront/storage"
	"go.uber.org/zap"
)

type loginRequest struct {
	Token   string `json:"token" binding:"required"`
	GuestID string `json:"guest_id"`
}

// POST /auth/login
//
// token is the backend access token obtained from the identity provider.
// A guest cart named by guest_id is merged into the user's server cart.
func Login(sessions *Sessions, secret string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
			return
		}
		ctx := c.Request.Context()

		// 1. Resolve the user behind the backend token
		user, err := sessions.API.WithToken(req.Token).GetCurrentUser(ctx)
		if err != nil {
			if errors.Is(err, api.ErrAuthExpired) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired backend token"})
				return
			}
			sessions.Log.Error("login: fetch user failed", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch user"})
			return
		}

		// 2. Remember the backend token and profile for this user
		creds := sessions.Credentials(user.ID)
		if err := creds.SetToken(ctx, req.Token); err != nil {
			sessions.Log.Error("login: store token failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start session"})
			return
		}
		if err := storage.SetJSON(ctx, creds.Store, storage.KeyUser, user); err != nil {
			sessions.Log.Warn("login: cache user failed", zap.Error(err))
		}
		sessions.Carts.Forget(user.ID)

		// 3. Merge guest cart into user cart
		mergeStatus := cart.MergeNoGuestCart
		var merge cart.MergeResult
		if req.GuestID != "" {
			merge, err = sessions.Carts.MergeGuest(ctx, req.GuestID, user.ID, sessions.Client(user.ID))
			if err != nil {
				sessions.Log.Warn("login: guest cart merge failed",
					zap.String("guest_id", req.GuestID),
					zap.String("user_id", user.ID),
					zap.Error(err))
			}
			mergeStatus = merge.Status
		}

		// 4. Issue the session token
		role := user.Role
		if role == "" {
			role = RoleUser
		}
		token, expiresAt, err := IssueToken(secret, user.ID, role, user.Email, ttl)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Token generation failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":      "Login successful",
			"merge_status": mergeStatus,
			"merge":        gin.H{"added": merge.Added, "updated": merge.Updated},
			"user":         user,
			"token":        token,
			"expires_at":   expiresAt,
		})
	}
}

// POST /auth/logout
func Logout(sessions *Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if err := sessions.End(c.Request.Context(), userID); err != nil {
			sessions.Log.Warn("logout: clear session failed", zap.String("user_id", userID), zap.Error(err))
		}
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}
