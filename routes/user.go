package routes

import (
	"github.com/gin-gonic/gin"
	cartControllers "github.com/junaidrashid-git/storefront/controllers/cart"
	productcontroller "github.com/junaidrashid-git/storefront/controllers/product"
	userControllers "github.com/junaidrashid-git/storefront/controllers/user"
	"github.com/junaidrashid-git/storefront/middleware"
)

// SetupUserRoutes registers all "/user/*" endpoints. Requires a signed-in
// user whose backend session is still active.
func SetupUserRoutes(r *gin.Engine, d Deps) {
	userGroup := r.Group("/user")
	userGroup.Use(middleware.ValidateToken(d.JWTSecret), middleware.RequireUser(d.Sessions))
	{
		// ──────────────── User Profile ────────────────
		userGroup.GET("", userControllers.GetUser(d.Sessions))
		userGroup.PUT("", userControllers.UpdateUser(d.Sessions))
		userGroup.POST("/password", userControllers.ChangePassword(d.Sessions))

		addressGroup := userGroup.Group("/addresses")
		{
			addressGroup.GET("", userControllers.GetAddresses(d.Sessions))
			addressGroup.POST("", userControllers.CreateAddress(d.Sessions))
			addressGroup.PUT("/:id", userControllers.UpdateAddress(d.Sessions))
			addressGroup.DELETE("/:id", userControllers.DeleteAddress(d.Sessions))
			addressGroup.PATCH("/:id/default", userControllers.SetDefaultAddress(d.Sessions))
		}

		// ──────────────── Shopping Cart ────────────────
		cartGroup := userGroup.Group("/cart")
		{
			cartGroup.GET("", cartControllers.GetUserCart(d.Sessions))
			cartGroup.POST("", cartControllers.AddUserCartItem(d.Sessions))
			cartGroup.PUT("/:variant_id", cartControllers.UpdateUserCartItem(d.Sessions))
			cartGroup.DELETE("/:variant_id", cartControllers.DeleteUserCartItem(d.Sessions))
			cartGroup.DELETE("", cartControllers.ClearUserCart(d.Sessions))
		}

		// ──────────────── Browse Products ────────────────
		userGroup.GET("/products", productcontroller.GetProducts(d.API, d.Sessions))
		userGroup.GET("/products/:id", productcontroller.GetProductByID(d.API))
		userGroup.GET("/categories", productcontroller.GetAllCategories(d.API))
		userGroup.GET("/categories/:id", productcontroller.GetCategoryByID(d.API))

		userGroup.GET("/searches/recent", productcontroller.GetRecentSearches(d.Sessions))
		userGroup.DELETE("/searches/recent", productcontroller.ClearRecentSearches(d.Sessions))
	}
}
