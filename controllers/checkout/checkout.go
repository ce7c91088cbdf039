package checkoutControllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	cartControllers "github.com/storelane/storefront-api/controllers/cart"
	orderControllers "github.com/storelane/storefront-api/controllers/order"
	"github.com/storelane/storefront-api/gateway/razorpay"
	"github.com/storelane/storefront-api/models"
	"github.com/storelane/storefront-api/pricing"
)

// ConfirmationSender is what the workflow needs from the mailer.
type ConfirmationSender interface {
	SendOrderConfirmation(order models.Order, toEmail string) error
}

// POST /checkout
//
// Guards the preconditions (non-empty cart, saved billing and shipping
// addresses), resolves the final total, creates the gateway order and records
// the attempt. The client completes payment against the returned gateway
// order id and re-enters through the callback.
func Checkout(db *gorm.DB, gw *razorpay.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID := userIDVal.(string)

		cart, err := cartControllers.GetOrCreateCart(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
			return
		}
		var count int64
		if err := db.Model(&models.CartItem{}).Where("cart_id = ?", cart.CartID).Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
			return
		}
		if count == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Your cart is empty. Please add items to your cart before proceeding to checkout."})
			return
		}

		// MissingAddress must block before any intent is created.
		var billing models.BillingAddress
		var shipping models.ShippingAddress
		if err := db.Where("user_id = ?", userID).First(&billing).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please save your billing and shipping information before checkout."})
			return
		}
		if err := db.Where("user_id = ?", userID).First(&shipping).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please save your billing and shipping information before checkout."})
			return
		}

		shippingCharge := pricing.ShippingCharge(db)
		finalTotal := pricing.FinalTotal(cart.Total, shippingCharge)
		amountPaise, err := pricing.ToMinorUnits(finalTotal)
		if err != nil {
			log.Printf("❌ Checkout for user %s: %v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred during the payment process. Please try again."})
			return
		}

		gatewayOrderID, err := gw.CreateOrder(c.Request.Context(), amountPaise, "INR", uuid.NewString())
		if err != nil {
			log.Printf("❌ Gateway order creation for user %s: %v", userID, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "An error occurred during the payment process. Please try again."})
			return
		}

		attempt := models.PaymentAttempt{
			UserID:         userID,
			GatewayOrderID: gatewayOrderID,
			AmountPaise:    amountPaise,
			Currency:       "INR",
			State:          models.AttemptCreated,
		}
		if err := db.Create(&attempt).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record payment attempt"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"gateway_order_id": gatewayOrderID,
			"amount":           amountPaise,
			"currency":         "INR",
			"key_id":           gw.KeyID(),
			"shipping":         shippingCharge,
			"final_total":      finalTotal,
		})
	}
}

type CallbackInput struct {
	GatewayOrderID string `json:"gateway_order_id"`
	PaymentID      string `json:"payment_id"`
	Signature      string `json:"signature"`
}

// POST /checkout/callback
//
// Re-entry point after the user completes payment. Verifies the gateway
// signature, fetches the payment method, and hands off to PlaceOrder. The
// confirmation email is dispatched only after the transaction has committed,
// so a mail failure can never roll back a paid order.
func Callback(db *gorm.DB, gw *razorpay.Client, mail ConfirmationSender) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID := userIDVal.(string)

		var input CallbackInput
		if err := c.ShouldBindJSON(&input); err != nil ||
			input.GatewayOrderID == "" || input.PaymentID == "" || input.Signature == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Payment was canceled."})
			return
		}

		if err := gw.VerifySignature(input.GatewayOrderID, input.PaymentID, input.Signature); err != nil {
			// Cart stays intact; the user can retry from it.
			if err := db.Model(&models.PaymentAttempt{}).
				Where("gateway_order_id = ? AND user_id = ? AND state = ?",
					input.GatewayOrderID, userID, models.AttemptCreated).
				Update("state", models.AttemptFailed).Error; err != nil {
				log.Printf("⚠️ Failed to mark attempt %s as failed: %v", input.GatewayOrderID, err)
			}
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "Payment verification failed. Please try again."})
			return
		}

		method, err := gw.FetchPayment(c.Request.Context(), input.PaymentID)
		if err != nil {
			log.Printf("❌ Payment fetch for %s: %v", input.PaymentID, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "An error occurred during the payment process. Please try again."})
			return
		}

		order, replayed, err := PlaceOrder(db, PlaceOrderInput{
			UserID:         userID,
			GatewayOrderID: input.GatewayOrderID,
			PaymentID:      input.PaymentID,
			PaymentMethod:  method,
		})
		if err != nil {
			var stockErr *StockError
			switch {
			case errors.As(err, &stockErr):
				c.JSON(http.StatusConflict, gin.H{"error": "Insufficient stock for " + stockErr.ProductName + "."})
			case errors.Is(err, ErrEmptyCart), errors.Is(err, ErrMissingAddress):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case errors.Is(err, ErrUnknownAttempt):
				c.JSON(http.StatusNotFound, gin.H{"error": "Unknown payment reference."})
			case errors.Is(err, ErrAmountMismatch):
				c.JSON(http.StatusConflict, gin.H{"error": "Your cart changed after payment was initiated. Please contact support."})
			default:
				log.Printf("❌ Order placement for user %s: %v", userID, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred during the payment process. Please try again."})
			}
			return
		}

		if !replayed {
			go notifyOrderPlaced(db, mail, order)
			orderControllers.Broadcast(order)
		}

		c.JSON(http.StatusOK, gin.H{
			"message":     "Your order has been placed successfully.",
			"order_id":    order.ID,
			"receipt_ref": order.ReceiptRef,
		})
	}
}

// notifyOrderPlaced runs outside the commit transaction; its failure is
// logged, never propagated.
func notifyOrderPlaced(db *gorm.DB, mail ConfirmationSender, order models.Order) {
	if mail == nil {
		return
	}
	var user models.User
	if err := db.First(&user, "id = ?", order.UserID).Error; err != nil {
		log.Printf("⚠️ Confirmation for order #%d: user lookup failed: %v", order.ID, err)
		return
	}
	if err := mail.SendOrderConfirmation(order, user.Email); err != nil {
		log.Printf("⚠️ Failed to send confirmation for order #%d: %v", order.ID, err)
	}
}
