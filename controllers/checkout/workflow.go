package checkoutControllers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storelane/storefront-api/models"
	"github.com/storelane/storefront-api/pricing"
)

type PlaceOrderInput struct {
	UserID         string
	GatewayOrderID string
	PaymentID      string
	PaymentMethod  string
}

// testHookAfterOrderCreate lets tests force a failure between order creation
// and the inventory decrement to exercise the rollback path.
var testHookAfterOrderCreate func(tx *gorm.DB) error

// lockForUpdate takes a row lock held until commit or rollback. SQLite (used
// in tests) serializes writers on its own and rejects FOR UPDATE.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func generateReceiptRef() string {
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()
}

// PlaceOrder materializes an order from a verified payment callback. Inside a
// single transaction it re-validates every cart line against current stock
// (rows locked until commit), creates the Order and its items with prices
// frozen, decrements inventory, clears the cart, and marks the payment
// attempt captured. Any failure rolls the whole thing back; no partial order
// ever persists.
//
// A replayed callback for an already-captured attempt returns the existing
// order with replayed=true and mutates nothing. The unique index on
// orders.payment_id backs this up at the constraint level.
func PlaceOrder(db *gorm.DB, in PlaceOrderInput) (models.Order, bool, error) {
	var order models.Order
	replayed := false

	err := db.Transaction(func(tx *gorm.DB) error {
		var attempt models.PaymentAttempt
		if err := lockForUpdate(tx).
			Where("gateway_order_id = ? AND user_id = ?", in.GatewayOrderID, in.UserID).
			First(&attempt).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrUnknownAttempt
			}
			return err
		}

		if attempt.State == models.AttemptCaptured {
			replayed = true
			return tx.Preload("Items").
				Where("payment_id = ?", attempt.PaymentID).
				First(&order).Error
		}

		var cart models.Cart
		if err := tx.Preload("Items").Where("user_id = ?", in.UserID).First(&cart).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrEmptyCart
			}
			return err
		}
		if len(cart.Items) == 0 {
			return ErrEmptyCart
		}

		var billing models.BillingAddress
		var shippingAddr models.ShippingAddress
		if err := tx.Where("user_id = ?", in.UserID).First(&billing).Error; err != nil {
			return ErrMissingAddress
		}
		if err := tx.Where("user_id = ?", in.UserID).First(&shippingAddr).Error; err != nil {
			return ErrMissingAddress
		}

		// Mandatory stock re-validation: time has passed since add-to-cart
		// and stock may have moved. The locks taken here are held until the
		// transaction ends, so two checkouts racing on the same product
		// cannot both pass.
		inventories := make([]models.Inventory, 0, len(cart.Items))
		for _, item := range cart.Items {
			var inv models.Inventory
			if err := lockForUpdate(tx).
				Where("product_id = ?", item.ProductID).
				First(&inv).Error; err != nil {
				return err
			}
			if inv.StockQuantity < item.Quantity {
				return &StockError{
					ProductName: item.ProductName,
					Available:   inv.StockQuantity,
					Requested:   item.Quantity,
				}
			}
			inventories = append(inventories, inv)
		}

		shippingCharge := pricing.ShippingCharge(tx)
		finalTotal := pricing.FinalTotal(cart.Total, shippingCharge)
		paise, err := pricing.ToMinorUnits(finalTotal)
		if err != nil {
			return err
		}
		if paise != attempt.AmountPaise {
			return ErrAmountMismatch
		}

		orderItems := make([]models.OrderItem, 0, len(cart.Items))
		for _, item := range cart.Items {
			orderItems = append(orderItems, models.OrderItem{
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				Price:       item.UnitPrice,
				Quantity:    item.Quantity,
			})
		}

		order = models.Order{
			UserID:         in.UserID,
			ReceiptRef:     generateReceiptRef(),
			GatewayOrderID: in.GatewayOrderID,
			PaymentID:      in.PaymentID,
			PaymentMethod:  in.PaymentMethod,
			Status:         models.OrderStatusPending,
			Billing:        billing.AddressFields,
			Shipping:       shippingAddr.AddressFields,
			ShippingCharge: shippingCharge,
			Total:          finalTotal,
			Items:          orderItems,
			CreatedAt:      time.Now(),
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		if testHookAfterOrderCreate != nil {
			if err := testHookAfterOrderCreate(tx); err != nil {
				return err
			}
		}

		for i, item := range cart.Items {
			inv := inventories[i]
			inv.StockQuantity -= item.Quantity
			if err := tx.Save(&inv).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("cart_id = ?", cart.CartID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Cart{}).Where("cart_id = ?", cart.CartID).
			Update("total", decimal.Zero).Error; err != nil {
			return err
		}

		attempt.PaymentID = in.PaymentID
		attempt.State = models.AttemptCaptured
		return tx.Save(&attempt).Error
	})

	return order, replayed, err
}
