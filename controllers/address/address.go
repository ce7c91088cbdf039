package addressControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/storelane/storefront-api/models"
)

type SaveInfoInput struct {
	Billing  models.AddressFields `json:"billing" binding:"required"`
	Shipping models.AddressFields `json:"shipping" binding:"required"`
}

// PUT /user/addresses
//
// The single authoritative save-info operation: upserts both the billing and
// the shipping record for the user in one call. Each user has at most one of
// each; saving overwrites.
func SaveInfo(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID := userIDVal.(string)

		var input SaveInfoInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			var billing models.BillingAddress
			if err := tx.Where("user_id = ?", userID).First(&billing).Error; err != nil {
				if err != gorm.ErrRecordNotFound {
					return err
				}
				billing = models.BillingAddress{UserID: userID}
			}
			billing.AddressFields = input.Billing
			if err := tx.Save(&billing).Error; err != nil {
				return err
			}

			var shipping models.ShippingAddress
			if err := tx.Where("user_id = ?", userID).First(&shipping).Error; err != nil {
				if err != gorm.ErrRecordNotFound {
					return err
				}
				shipping = models.ShippingAddress{UserID: userID}
			}
			shipping.AddressFields = input.Shipping
			return tx.Save(&shipping).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save addresses"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Billing and shipping information saved successfully."})
	}
}

// GET /user/addresses
func GetAddresses(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID := userIDVal.(string)

		var billing models.BillingAddress
		var shipping models.ShippingAddress
		resp := gin.H{}
		if err := db.Where("user_id = ?", userID).First(&billing).Error; err == nil {
			resp["billing"] = billing
		}
		if err := db.Where("user_id = ?", userID).First(&shipping).Error; err == nil {
			resp["shipping"] = shipping
		}
		c.JSON(http.StatusOK, resp)
	}
}
