package productcontroller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/api"
	"github.com/junaidrashid-git/storefront/auth"
	"github.com/junaidrashid-git/storefront/controllers"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var sortFields = map[string]string{
	"created_at": "createdAt",
	"price":      "price",
	"name":       "name",
}

// productQuery translates the storefront query string into an
// api.ProductQuery.
func productQuery(c *gin.Context) (api.ProductQuery, string) {
	q := api.ProductQuery{
		Search:     strings.TrimSpace(c.Query("search")),
		CategoryID: c.Query("category_id"),
		Size:       c.Query("size"),
		Color:      c.Query("color"),
	}

	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if q.Limit > 100 {
		q.Limit = 100
	}

	if s := c.Query("min_price"); s != "" {
		mp, err := decimal.NewFromString(s)
		if err != nil {
			return q, "Invalid min_price"
		}
		q.MinPrice = &mp
	}
	if s := c.Query("max_price"); s != "" {
		mp, err := decimal.NewFromString(s)
		if err != nil {
			return q, "Invalid max_price"
		}
		q.MaxPrice = &mp
	}
	if q.MinPrice != nil && q.MaxPrice != nil && q.MinPrice.GreaterThan(*q.MaxPrice) {
		return q, "min_price is greater than max_price"
	}

	sortBy, ok := sortFields[c.DefaultQuery("sort_by", "created_at")]
	if !ok {
		return q, "Invalid sort_by"
	}
	q.SortBy = sortBy
	q.Order = strings.ToLower(c.DefaultQuery("order", "desc"))
	if q.Order != "asc" && q.Order != "desc" {
		q.Order = "desc"
	}
	return q, ""
}

// GET /user/products
//
// A non-empty search term is recorded in the user's recent searches.
func GetProducts(catalog *api.Client, sessions *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, invalid := productQuery(c)
		if invalid != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": invalid})
			return
		}

		products, err := catalog.ListProducts(c.Request.Context(), q)
		if err != nil {
			controllers.APIError(c, err, "")
			return
		}

		if userID := c.GetString("user_id"); sessions != nil && userID != "" && q.Search != "" {
			if err := sessions.Searches(userID).Add(c.Request.Context(), q.Search); err != nil {
				sessions.Log.Warn("recording search failed", zap.String("user_id", userID), zap.Error(err))
			}
		}
		c.JSON(http.StatusOK, products)
	}
}
