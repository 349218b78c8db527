package productcontroller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/api"
	"github.com/junaidrashid-git/storefront/controllers"
	"github.com/junaidrashid-git/storefront/models"
	"github.com/tealeg/xlsx"
)

const exportPageSize = 100

// ExportProductsToExcel pages through the catalog and writes one row per
// product.
func ExportProductsToExcel(catalog *api.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var products []models.Product
		for page := 1; ; page++ {
			res, err := catalog.ListProducts(c.Request.Context(), api.ProductQuery{Page: page, Limit: exportPageSize})
			if err != nil {
				controllers.APIError(c, err, "")
				return
			}
			products = append(products, res.Data...)
			if len(res.Data) == 0 || page >= res.TotalPages {
				break
			}
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Products")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel sheet"})
			return
		}

		headerRow := sheet.AddRow()
		for _, h := range productColumns {
			headerRow.AddCell().SetValue(h)
		}

		for _, p := range products {
			row := sheet.AddRow()
			row.AddCell().SetValue(p.ID)
			row.AddCell().SetValue(p.Name)
			row.AddCell().SetValue(p.Description)
			row.AddCell().SetValue(p.Price.StringFixed(2))
			row.AddCell().SetValue(p.SalePrice.StringFixed(2))
			row.AddCell().SetValue(p.CategoryID)
			row.AddCell().SetValue(strings.Join(p.Images, ","))
			row.AddCell().SetValue(strconv.FormatBool(p.IsActive))
			row.AddCell().SetValue(p.CreatedAt.Format("2006-01-02 15:04:05"))
			row.AddCell().SetValue(p.UpdatedAt.Format("2006-01-02 15:04:05"))
		}

		c.Header("Content-Disposition", "attachment; filename=products.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := file.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
			return
		}
	}
}
