package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	addressControllers "github.com/storelane/storefront-api/controllers/address"
	cartControllers "github.com/storelane/storefront-api/controllers/cart"
	userControllers "github.com/storelane/storefront-api/controllers/user"
	wishlistControllers "github.com/storelane/storefront-api/controllers/wishlist"
	"github.com/storelane/storefront-api/middleware"
)

// SetupUserRoutes registers all "/user/*" endpoints. Requires JWT middleware.
func SetupUserRoutes(r *gin.Engine, db *gorm.DB) {
	userGroup := r.Group("/user")
	userGroup.Use(middleware.ValidateToken)
	{
		// ──────────────── User Profile ────────────────
		userGroup.GET("/", userControllers.GetUser(db))
		userGroup.PUT("/", userControllers.UpdateUser(db))

		// ──────────────── Shopping Cart ────────────────
		cartGroup := userGroup.Group("/cart")
		{
			cartGroup.GET("/", cartControllers.GetUserCart(db))
			cartGroup.POST("/", cartControllers.AddCartItem(db))
			cartGroup.PUT("/:item_id", cartControllers.UpdateCartItem(db))
			cartGroup.DELETE("/:item_id", cartControllers.DeleteCartItem(db))
		}

		// ──────────────── Wishlist ────────────────
		wishlistGroup := userGroup.Group("/wishlist")
		{
			wishlistGroup.GET("/", wishlistControllers.GetWishlist(db))
			wishlistGroup.POST("/", wishlistControllers.AddToWishlist(db))
			wishlistGroup.DELETE("/:product_id", wishlistControllers.RemoveFromWishlist(db))
		}

		// ──────────────── Billing & Shipping Info ────────────────
		userGroup.GET("/addresses", addressControllers.GetAddresses(db))
		userGroup.PUT("/addresses", addressControllers.SaveInfo(db))
	}
}
