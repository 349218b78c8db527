package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/api"
	"github.com/junaidrashid-git/storefront/controllers"
	"github.com/junaidrashid-git/storefront/models"
)

func UpdateProduct(catalog *api.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := adminClient(c, catalog)
		if !ok {
			return
		}
		var input models.ProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		product, err := client.UpdateProduct(c.Request.Context(), c.Param("id"), input)
		if err != nil {
			controllers.APIError(c, err, "Product not found")
			return
		}
		c.JSON(http.StatusOK, product)
	}
}
