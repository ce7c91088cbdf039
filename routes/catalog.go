package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/storelane/storefront-api/cache"
	contactControllers "github.com/storelane/storefront-api/controllers/contact"
	productControllers "github.com/storelane/storefront-api/controllers/product"
	"github.com/storelane/storefront-api/mailer"
)

func SetupCatalogRoutes(r *gin.Engine, db *gorm.DB, mail *mailer.Mailer, store *cache.Store) {
	r.GET("/products", productControllers.GetProducts(db, store))
	r.GET("/products/:id", productControllers.GetProductByID(db))

	r.POST("/contact", contactControllers.SubmitContactForm(mail))
}
