package productcontroller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/api"
	"github.com/junaidrashid-git/storefront/models"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
)

// Column order shared by the import and the export.
var productColumns = []string{
	"ID", "Name", "Description", "Price", "SalePrice", "CategoryID", "Images", "IsActive", "CreatedAt", "UpdatedAt",
}

// ImportProductsFromExcel creates or updates products from the first sheet.
// A row with an ID updates that product; other rows create one.
func ImportProductsFromExcel(catalog *api.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := adminClient(c, catalog)
		if !ok {
			return
		}

		excelFileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is required"})
			return
		}

		file, err := excelFileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open Excel file"})
			return
		}
		defer file.Close()

		xlFile, err := xlsx.OpenReaderAt(file, excelFileHeader.Size)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse Excel file"})
			return
		}

		if len(xlFile.Sheets) == 0 || xlFile.Sheets[0].MaxRow < 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is empty or missing header row"})
			return
		}

		ctx := c.Request.Context()
		sheet := xlFile.Sheets[0]
		createdCount, updatedCount, skippedCount := 0, 0, 0
		var failures []string

		for i := 1; i < sheet.MaxRow; i++ {
			id, input, ok := productFromRow(sheet.Rows[i])
			if !ok {
				skippedCount++
				continue
			}

			if id != "" {
				if _, err := client.UpdateProduct(ctx, id, input); err != nil {
					skippedCount++
					failures = append(failures, id+": "+err.Error())
					continue
				}
				updatedCount++
				continue
			}
			if _, err := client.CreateProduct(ctx, input); err != nil {
				skippedCount++
				failures = append(failures, input.Name+": "+err.Error())
				continue
			}
			createdCount++
		}

		c.JSON(http.StatusOK, gin.H{
			"message":  "Import finished",
			"created":  createdCount,
			"updated":  updatedCount,
			"skipped":  skippedCount,
			"failures": failures,
		})
	}
}

func productFromRow(row *xlsx.Row) (string, models.ProductInput, bool) {
	if row == nil || len(row.Cells) < 4 {
		return "", models.ProductInput{}, false
	}
	get := func(index int) string {
		if index < len(row.Cells) {
			return strings.TrimSpace(row.Cells[index].String())
		}
		return ""
	}

	price, err := decimal.NewFromString(get(3))
	if get(1) == "" || err != nil || !price.IsPositive() {
		return "", models.ProductInput{}, false
	}
	input := models.ProductInput{
		Name:        get(1),
		Description: get(2),
		Price:       price,
		CategoryID:  get(5),
		IsActive:    !strings.EqualFold(get(7), "false"),
	}
	if sale, err := decimal.NewFromString(get(4)); err == nil {
		input.SalePrice = sale
	}
	for _, img := range strings.Split(get(6), ",") {
		if img = strings.TrimSpace(img); img != "" {
			input.Images = append(input.Images, img)
		}
	}
	return get(0), input, true
}
