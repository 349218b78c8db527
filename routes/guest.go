package routes

import (
	"github.com/gin-gonic/gin"
	cartControllers "github.com/junaidrashid-git/storefront/controllers/cart"
	productcontroller "github.com/junaidrashid-git/storefront/controllers/product"
	"github.com/junaidrashid-git/storefront/middleware"
)

// SetupGuestRoutes registers "/guest/*": catalog browsing and the guest
// cart named by ?guest_id. Any valid token, guest or user, is accepted.
func SetupGuestRoutes(r *gin.Engine, d Deps) {
	guestGroup := r.Group("/guest")
	guestGroup.Use(middleware.ValidateToken(d.JWTSecret))
	{
		guestGroup.GET("/products", productcontroller.GetProducts(d.API, nil))
		guestGroup.GET("/products/:id", productcontroller.GetProductByID(d.API))
		guestGroup.GET("/categories", productcontroller.GetAllCategories(d.API))
		guestGroup.GET("/categories/:id", productcontroller.GetCategoryByID(d.API))

		cartGroup := guestGroup.Group("/cart")
		{
			cartGroup.GET("", cartControllers.GetGuestCart(d.Carts))
			cartGroup.POST("", cartControllers.AddGuestCartItem(d.Carts, d.API))
			cartGroup.PUT("/:variant_id", cartControllers.UpdateGuestCartItem(d.Carts))
			cartGroup.DELETE("/:variant_id", cartControllers.DeleteGuestCartItem(d.Carts))
			cartGroup.DELETE("", cartControllers.ClearGuestCart(d.Carts))
		}
	}
}
