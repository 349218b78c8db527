package productcontroller

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/api"
	"github.com/junaidrashid-git/storefront/controllers"
	"github.com/junaidrashid-git/storefront/models"
)

func adminClient(c *gin.Context, catalog *api.Client) (*api.Client, bool) {
	return controllers.BackendClient(c, catalog)
}

// CreateProduct creates a product from a JSON body.
func CreateProduct(catalog *api.Client) gin.HandlerFunc {
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
		if input.Name == "" || !input.Price.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name and a positive price are required"})
			return
		}

		product, err := client.CreateProduct(c.Request.Context(), input)
		if err != nil {
			controllers.APIError(c, err, "")
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}

var allowedImageExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// UploadProductImage forwards a multipart "image" file to the backend
// upload endpoint and returns the stored URL.
func UploadProductImage(catalog *api.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := adminClient(c, catalog)
		if !ok {
			return
		}
		header, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Image file is required"})
			return
		}
		if !allowedImageExt[strings.ToLower(filepath.Ext(header.Filename))] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported image type"})
			return
		}

		file, err := header.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read image"})
			return
		}
		defer file.Close()

		res, err := client.UploadImage(c.Request.Context(), header.Filename, file)
		if err != nil {
			controllers.APIError(c, err, "")
			return
		}
		c.JSON(http.StatusCreated, res)
	}
}
