package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	orderControllers "github.com/storelane/storefront-api/controllers/order"
	"github.com/storelane/storefront-api/middleware"
)

func SetupOrderRoutes(r *gin.Engine, db *gorm.DB) {
	// Order tracking for the authenticated user
	orders := r.Group("/orders")
	orders.Use(middleware.ValidateToken)
	{
		orders.GET("/", orderControllers.GetUserOrdersHandler(db))
		orders.GET("/:orderID", orderControllers.GetOrderByIDHandler(db))
	}

	// Operator endpoints (API-key protected)
	ops := r.Group("/ops/orders")
	ops.Use(middleware.ValidateAPIKey)
	{
		ops.GET("/", orderControllers.GetAllOrdersHandler(db))
		ops.PUT("/:orderID/status", orderControllers.UpdateOrderStatusHandler(db))
		ops.GET("/export", orderControllers.ExportOrdersToExcel(db))
	}

	// websocket endpoint for real-time order updates
	r.GET("/ws/orders", orderControllers.OrderWebSocketHandler)
}
