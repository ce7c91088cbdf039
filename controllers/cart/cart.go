package cartControllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storelane/storefront-api/models"
	"github.com/storelane/storefront-api/pricing"
)

type AddItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

type UpdateItemInput struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// GetOrCreateCart fetches the user's cart, creating it lazily on first
// access.
func GetOrCreateCart(db *gorm.DB, userID string) (models.Cart, error) {
	var cart models.Cart
	err := db.Where("user_id = ?", userID).First(&cart).Error
	if err == gorm.ErrRecordNotFound {
		cart = models.Cart{UserID: userID, Total: decimal.Zero}
		err = db.Create(&cart).Error
	}
	return cart, err
}

// RecomputeTotal sets Cart.Total to the sum of its line totals. Summing in the
// database rather than maintaining the total incrementally keeps it from
// drifting.
func RecomputeTotal(db *gorm.DB, cartID uint) error {
	var items []models.CartItem
	if err := db.Where("cart_id = ?", cartID).Find(&items).Error; err != nil {
		return err
	}
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal)
	}
	return db.Model(&models.Cart{}).Where("cart_id = ?", cartID).
		Update("total", total).Error
}

// POST /user/cart
func AddCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID := userIDVal.(string)

		var input AddItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		var product models.Product
		if err := db.Preload("Inventory").
			First(&product, "id = ? AND published = ?", input.ProductID, true).Error; err != nil {
			status := http.StatusInternalServerError
			errMsg := "Failed to validate product"
			if err == gorm.ErrRecordNotFound {
				status = http.StatusBadRequest
				errMsg = "Product does not exist"
			}
			c.JSON(status, gin.H{"error": errMsg})
			return
		}

		cart, err := GetOrCreateCart(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user cart"})
			return
		}

		var item models.CartItem
		err = db.Where("cart_id = ? AND product_id = ?", cart.CartID, input.ProductID).First(&item).Error
		if err != nil && err != gorm.ErrRecordNotFound {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart item"})
			return
		}

		// Stock gate: the existing line plus the requested quantity must fit
		// within current availability, or nothing is persisted.
		requested := input.Quantity + item.Quantity
		if requested > product.Inventory.StockQuantity {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient stock available"})
			return
		}

		if err == gorm.ErrRecordNotFound {
			item = models.CartItem{
				CartID:      cart.CartID,
				ProductID:   product.ID,
				ProductName: product.Name,
			}
		}
		item.Quantity = requested
		item.UnitPrice = product.Price
		item.LineTotal = product.Price.Mul(decimal.NewFromInt(int64(requested)))
		item.AddedAt = time.Now()

		if err := db.Save(&item).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save cart item"})
			return
		}
		if err := RecomputeTotal(db, cart.CartID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart total"})
			return
		}

		c.JSON(http.StatusOK, item)
	}
}

// PUT /user/cart/:item_id
func UpdateCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID := userIDVal.(string)
		itemID := c.Param("item_id")

		var input UpdateItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		var cart models.Cart
		if err := db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User cart not found"})
			return
		}

		var item models.CartItem
		if err := db.Where("id = ? AND cart_id = ?", itemID, cart.CartID).First(&item).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
			return
		}

		var product models.Product
		if err := db.Preload("Inventory").First(&product, "id = ?", item.ProductID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate product"})
			return
		}
		if input.Quantity > product.Inventory.StockQuantity {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient stock available"})
			return
		}

		item.Quantity = input.Quantity
		item.UnitPrice = product.Price
		item.LineTotal = product.Price.Mul(decimal.NewFromInt(int64(input.Quantity)))
		if err := db.Save(&item).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart item"})
			return
		}
		if err := RecomputeTotal(db, cart.CartID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart total"})
			return
		}

		var fresh models.Cart
		db.Where("cart_id = ?", cart.CartID).First(&fresh)
		shipping := pricing.ShippingCharge(db)
		c.JSON(http.StatusOK, gin.H{
			"item":        item,
			"cart_total":  fresh.Total,
			"shipping":    shipping,
			"final_total": pricing.FinalTotal(fresh.Total, shipping),
		})
	}
}

// DELETE /user/cart/:item_id
func DeleteCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID := userIDVal.(string)
		itemID := c.Param("item_id")

		var cart models.Cart
		if err := db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User cart not found"})
			return
		}

		result := db.Where("id = ? AND cart_id = ?", itemID, cart.CartID).Delete(&models.CartItem{})
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete item"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
			return
		}

		// Removal recomputes eagerly so the stored total never goes stale.
		if err := RecomputeTotal(db, cart.CartID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart total"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Cart item deleted"})
	}
}

// GET /user/cart
func GetUserCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID := userIDVal.(string)

		cart, err := GetOrCreateCart(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}
		var items []models.CartItem
		if err := db.Where("cart_id = ?", cart.CartID).Find(&items).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}

		shipping := pricing.ShippingCharge(db)
		c.JSON(http.StatusOK, gin.H{
			"items":       items,
			"total":       cart.Total,
			"shipping":    shipping,
			"final_total": pricing.FinalTotal(cart.Total, shipping),
		})
	}
}
