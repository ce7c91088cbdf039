package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/storelane/storefront-api/cache"
	"github.com/storelane/storefront-api/gateway/razorpay"
	"github.com/storelane/storefront-api/mailer"
)

// SetupRoutes is the single entry-point that wires up the public, user, and
// operator route groups. The gateway client, mailer and cache are constructed
// once in main and injected here.
func SetupRoutes(r *gin.Engine, db *gorm.DB, gw *razorpay.Client, mail *mailer.Mailer, store *cache.Store) {
	// Public catalog + contact (no middleware)
	SetupCatalogRoutes(r, db, mail, store)

	// User routes (JWT-protected): profile, cart, wishlist, addresses
	SetupUserRoutes(r, db)

	// Checkout workflow (JWT-protected)
	SetupCheckoutRoutes(r, db, gw, mail)

	// Order tracking + operator endpoints
	SetupOrderRoutes(r, db)
}
