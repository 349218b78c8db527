package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/api"
	"github.com/junaidrashid-git/storefront/controllers"
)

// GetProductByID returns a single product with its variants.
// URL param: /products/:id
func GetProductByID(catalog *api.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Product ID is required"})
			return
		}

		product, err := catalog.GetProduct(c.Request.Context(), id)
		if err != nil {
			controllers.APIError(c, err, "Product not found")
			return
		}
		c.JSON(http.StatusOK, product)
	}
}
