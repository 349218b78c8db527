package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/api"
	"github.com/junaidrashid-git/storefront/controllers"
)

func DeleteProduct(catalog *api.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := adminClient(c, catalog)
		if !ok {
			return
		}
		id := c.Param("id")
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Product ID is required"})
			return
		}

		if err := client.DeleteProduct(c.Request.Context(), id); err != nil {
			controllers.APIError(c, err, "Product not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
	}
}
