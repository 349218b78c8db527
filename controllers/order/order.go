package orderControllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/api"
	"github.com/junaidrashid-git/storefront/auth"
	"github.com/junaidrashid-git/storefront/controllers"
	"github.com/junaidrashid-git/storefront/feed"
	"github.com/junaidrashid-git/storefront/models"
	"go.uber.org/zap"
)

// Publisher receives placed orders for the admin dashboard feed.
type Publisher interface {
	Publish(c feed.Category, p feed.Payload)
}

type PlaceOrderRequest struct {
	AddressID     string `json:"address_id" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required"`
	Note          string `json:"note"`
}

// POST /user/orders/place
//
// Places an order for the current cart and clears the cart.
func PlaceOrderHandler(sessions *auth.Sessions, events Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx := c.Request.Context()
		userID := c.GetString("user_id")

		store, err := sessions.Cart(ctx, userID)
		if err != nil {
			controllers.APIError(c, err, "Cart not found")
			return
		}
		items := store.Items()
		if len(items) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
			return
		}

		units := 0
		for _, it := range items {
			units += it.Quantity
		}

		order, err := sessions.Client(userID).CreateOrder(ctx, models.CreateOrderRequest{
			Items:         models.OrderItemsFromCart(items),
			AddressID:     req.AddressID,
			PaymentMethod: req.PaymentMethod,
			Note:          req.Note,
		})
		if err != nil {
			controllers.APIError(c, err, "")
			return
		}

		cleared := true
		if err := store.Clear(ctx); err != nil {
			cleared = false
			sessions.Log.Warn("clearing cart after order failed",
				zap.String("user_id", userID),
				zap.String("order", order.OrderNumber),
				zap.Error(err))
		}

		if events != nil {
			events.Publish(feed.CategoryOrders, feed.OrderEvent{
				OrderNumber: order.OrderNumber,
				Customer:    c.GetString("email"),
				Items:       units,
				Total:       order.TotalAmount,
				Status:      string(models.OrderStatusPending),
			})
		}

		c.JSON(http.StatusCreated, gin.H{
			"message":      "Order placed successfully",
			"order":        order,
			"cart_cleared": cleared,
		})
	}
}

// GET /user/orders?page=&limit=&status=
func GetUserOrdersHandler(sessions *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

		q := api.OrderQuery{Page: page, Limit: limit}
		if status := c.Query("status"); status != "" {
			q.Status = models.OrderStatus(strings.ToLower(status))
			if !q.Status.Valid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order status"})
				return
			}
		}

		orders, err := sessions.Client(c.GetString("user_id")).ListOrders(c.Request.Context(), q)
		if err != nil {
			controllers.APIError(c, err, "")
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /user/orders/:number
func GetOrderByNumberHandler(sessions *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		number := c.Param("number")
		order, err := sessions.Client(c.GetString("user_id")).GetOrderByNumber(c.Request.Context(), number)
		if err != nil {
			controllers.APIError(c, err, "order not found")
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// POST /user/orders/:number/cancel
func CancelOrderHandler(sessions *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		client := sessions.Client(c.GetString("user_id"))

		order, err := client.GetOrderByNumber(ctx, c.Param("number"))
		if err != nil {
			controllers.APIError(c, err, "order not found")
			return
		}
		switch order.Status {
		case models.OrderStatusShipped, models.OrderStatusDelivered, models.OrderStatusCancelled:
			c.JSON(http.StatusConflict, gin.H{"error": "order can no longer be cancelled"})
			return
		}

		cancelled, err := client.CancelOrder(ctx, order.ID)
		if err != nil {
			controllers.APIError(c, err, "order not found")
			return
		}
		c.JSON(http.StatusOK, cancelled)
	}
}
