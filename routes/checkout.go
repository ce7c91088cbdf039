package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	checkoutControllers "github.com/storelane/storefront-api/controllers/checkout"
	"github.com/storelane/storefront-api/gateway/razorpay"
	"github.com/storelane/storefront-api/mailer"
	"github.com/storelane/storefront-api/middleware"
)

func SetupCheckoutRoutes(r *gin.Engine, db *gorm.DB, gw *razorpay.Client, mail *mailer.Mailer) {
	checkout := r.Group("/checkout")
	checkout.Use(middleware.ValidateToken)
	{
		// Creates the gateway order (payment intent)
		checkout.POST("/", checkoutControllers.Checkout(db, gw))

		// Re-entry after the user completes payment
		checkout.POST("/callback", checkoutControllers.Callback(db, gw, mail))
	}
}
