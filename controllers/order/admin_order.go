package orderControllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/api"
	"github.com/junaidrashid-git/storefront/controllers"
	"github.com/junaidrashid-git/storefront/feed"
	"github.com/junaidrashid-git/storefront/models"
)

// GET /admin/orders?page=&limit=&status=
func GetAllOrdersHandler(backend *api.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := controllers.BackendClient(c, backend)
		if !ok {
			return
		}
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

		q := api.OrderQuery{Page: page, Limit: limit, Status: models.OrderStatus(strings.ToLower(c.Query("status")))}
		if q.Status != "" && !q.Status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order status"})
			return
		}

		orders, err := client.ListOrders(c.Request.Context(), q)
		if err != nil {
			controllers.APIError(c, err, "")
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PUT /admin/orders/:orderID/status
//
// The new status is also pushed to the dashboard feed.
func UpdateOrderStatusHandler(backend *api.Client, events Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := controllers.BackendClient(c, backend)
		if !ok {
			return
		}
		var req statusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		status := models.OrderStatus(strings.ToLower(req.Status))
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order status"})
			return
		}

		order, err := client.UpdateOrderStatus(c.Request.Context(), c.Param("orderID"), status)
		if err != nil {
			controllers.APIError(c, err, "order not found")
			return
		}

		if events != nil {
			units := 0
			for _, it := range order.Items {
				units += it.Quantity
			}
			events.Publish(feed.CategoryOrders, feed.OrderEvent{
				OrderNumber: order.OrderNumber,
				Items:       units,
				Total:       order.TotalAmount,
				Status:      string(order.Status),
			})
		}
		c.JSON(http.StatusOK, order)
	}
}
