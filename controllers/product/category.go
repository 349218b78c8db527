package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/api"
	"github.com/junaidrashid-git/storefront/controllers"
	"github.com/junaidrashid-git/storefront/models"
)

// GetAllCategories returns all categories.
func GetAllCategories(catalog *api.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := catalog.ListCategories(c.Request.Context())
		if err != nil {
			controllers.APIError(c, err, "")
			return
		}
		if len(categories) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"message": "No categories found"})
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}

func GetCategoryByID(catalog *api.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		category, err := catalog.GetCategory(c.Request.Context(), c.Param("id"))
		if err != nil {
			controllers.APIError(c, err, "Category not found")
			return
		}
		c.JSON(http.StatusOK, category)
	}
}

func CreateCategory(catalog *api.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := adminClient(c, catalog)
		if !ok {
			return
		}
		var input models.CategoryInput
		if err := c.ShouldBindJSON(&input); err != nil || input.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Category name is required"})
			return
		}

		category, err := client.CreateCategory(c.Request.Context(), input)
		if err != nil {
			controllers.APIError(c, err, "")
			return
		}
		c.JSON(http.StatusCreated, category)
	}
}

func UpdateCategory(catalog *api.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := adminClient(c, catalog)
		if !ok {
			return
		}
		var input models.CategoryInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		category, err := client.UpdateCategory(c.Request.Context(), c.Param("id"), input)
		if err != nil {
			controllers.APIError(c, err, "Category not found")
			return
		}
		c.JSON(http.StatusOK, category)
	}
}

func DeleteCategory(catalog *api.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := adminClient(c, catalog)
		if !ok {
			return
		}
		if err := client.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
			controllers.APIError(c, err, "Category not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
	}
}
