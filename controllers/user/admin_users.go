package userControllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/api"
	"github.com/junaidrashid-git/storefront/controllers"
)

// GET /admin/users?page=&limit=
func GetAllUsers(backend *api.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := controllers.BackendClient(c, backend)
		if !ok {
			return
		}
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

		users, err := client.ListUsers(c.Request.Context(), page, limit)
		if err != nil {
			controllers.APIError(c, err, "")
			return
		}
		c.JSON(http.StatusOK, users)
	}
}
