package userControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/api"
	"github.com/junaidrashid-git/storefront/auth"
	"github.com/junaidrashid-git/storefront/controllers"
	"github.com/junaidrashid-git/storefront/models"
	"github.com/junaidrashid-git/storefront/storage"
	"go.uber.org/zap"
)

// GET /user
//
// Answers from the profile cached at login and refreshes it from the
// backend when ?refresh=true or nothing is cached.
func GetUser(sessions *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		userID := c.GetString("user_id")
		creds := sessions.Credentials(userID)

		if c.Query("refresh") != "true" {
			var cached models.User
			ok, err := storage.GetJSON(ctx, creds.Store, storage.KeyUser, &cached)
			if err != nil && !errors.Is(err, storage.ErrVersionMismatch) {
				sessions.Log.Warn("reading cached user failed", zap.String("user_id", userID), zap.Error(err))
			}
			if ok {
				c.JSON(http.StatusOK, cached)
				return
			}
		}

		user, err := sessions.Client(userID).GetCurrentUser(ctx)
		if err != nil {
			controllers.APIError(c, err, "User not found")
			return
		}
		if err := storage.SetJSON(ctx, creds.Store, storage.KeyUser, user); err != nil {
			sessions.Log.Warn("caching user failed", zap.String("user_id", userID), zap.Error(err))
		}
		c.JSON(http.StatusOK, user)
	}
}

// PUT /user
func UpdateUser(sessions *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.ProfileUpdate
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx := c.Request.Context()
		userID := c.GetString("user_id")

		user, err := sessions.Client(userID).UpdateProfile(ctx, input)
		if err != nil {
			controllers.APIError(c, err, "User not found")
			return
		}
		if err := storage.SetJSON(ctx, sessions.Credentials(userID).Store, storage.KeyUser, user); err != nil {
			sessions.Log.Warn("caching user failed", zap.String("user_id", userID), zap.Error(err))
		}
		c.JSON(http.StatusOK, user)
	}
}

type changePasswordInput struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// POST /user/password
func ChangePassword(sessions *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input changePasswordInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		err := sessions.Client(c.GetString("user_id")).ChangePassword(c.Request.Context(), api.PasswordChange{
			CurrentPassword: input.CurrentPassword,
			NewPassword:     input.NewPassword,
			ConfirmPassword: input.ConfirmPassword,
		})
		if err != nil {
			controllers.APIError(c, err, "")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
	}
}
