package routes

import (
	"github.com/gin-gonic/gin"
	orderControllers "github.com/junaidrashid-git/storefront/controllers/order"
	"github.com/junaidrashid-git/storefront/middleware"
)

func SetupOrderRoutes(r *gin.Engine, d Deps) {
	orders := r.Group("/user/orders")
	orders.Use(middleware.ValidateToken(d.JWTSecret), middleware.RequireUser(d.Sessions))
	{
		// Create a new order from the current cart
		orders.POST("/place", orderControllers.PlaceOrderHandler(d.Sessions, d.Simulator))

		// Orders of the signed-in user
		orders.GET("", orderControllers.GetUserOrdersHandler(d.Sessions))
		orders.GET("/:number", orderControllers.GetOrderByNumberHandler(d.Sessions))
		orders.POST("/:number/cancel", orderControllers.CancelOrderHandler(d.Sessions))
	}
}
