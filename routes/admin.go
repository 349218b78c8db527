package routes

import (
	"github.com/gin-gonic/gin"
	feedControllers "github.com/junaidrashid-git/storefront/controllers/feed"
	orderControllers "github.com/junaidrashid-git/storefront/controllers/order"
	productcontroller "github.com/junaidrashid-git/storefront/controllers/product"
	userControllers "github.com/junaidrashid-git/storefront/controllers/user"
	"github.com/junaidrashid-git/storefront/middleware"
)

// SetupAdminRoutes registers all "/admin/*" endpoints. Requires API-Key
// middleware; backend calls carry the admin's X-Backend-Token.
func SetupAdminRoutes(r *gin.Engine, d Deps) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.ValidateAPIKey(d.AdminAPIKey))
	{
		// ─────────── User Management ───────────
		adminGroup.GET("/users", userControllers.GetAllUsers(d.API))

		// ─────────── Product Management ───────────
		productAdmin := adminGroup.Group("/products")
		{
			productAdmin.POST("", productcontroller.CreateProduct(d.API))
			productAdmin.PUT("/:id", productcontroller.UpdateProduct(d.API))
			productAdmin.GET("", productcontroller.GetProducts(d.API, nil))
			productAdmin.DELETE("/:id", productcontroller.DeleteProduct(d.API))
			productAdmin.POST("/image", productcontroller.UploadProductImage(d.API))
			productAdmin.POST("/import-excel", productcontroller.ImportProductsFromExcel(d.API))
			productAdmin.GET("/export-excel", productcontroller.ExportProductsToExcel(d.API))
		}

		// ─────────── Category Management ───────────
		categoryAdmin := adminGroup.Group("/categories")
		{
			categoryAdmin.POST("", productcontroller.CreateCategory(d.API))
			categoryAdmin.PUT("/:id", productcontroller.UpdateCategory(d.API))
			categoryAdmin.GET("", productcontroller.GetAllCategories(d.API))
			categoryAdmin.DELETE("/:id", productcontroller.DeleteCategory(d.API))
		}

		// ─────────── Orders ───────────
		orderAdmin := adminGroup.Group("/orders")
		{
			orderAdmin.GET("", orderControllers.GetAllOrdersHandler(d.API))
			orderAdmin.PUT("/:orderID/status", orderControllers.UpdateOrderStatusHandler(d.API, d.Simulator))
		}

		// ─────────── Dashboard Feed ───────────
		feedAdmin := adminGroup.Group("/feed")
		{
			feedAdmin.GET("/snapshot", feedControllers.Snapshot(d.Simulator))
			feedAdmin.GET("/ws", feedControllers.Stream(d.Hub))
			feedAdmin.POST("/notifications/ack", feedControllers.Acknowledge(d.Simulator))
			feedAdmin.GET("/export-excel", feedControllers.ExportExcel(d.Simulator))
		}
	}
}
