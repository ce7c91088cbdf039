package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	// Order statuses (typical e-commerce flow)
	OrderStatusPending   OrderStatus = "pending"   // Order placed, awaiting dispatch
	OrderStatusShipped   OrderStatus = "shipped"   // Out for delivery
	OrderStatusDelivered OrderStatus = "delivered" // Customer received the item
	OrderStatusReturned  OrderStatus = "returned"  // Customer returned the item
	OrderStatusCancelled OrderStatus = "cancelled" // Cancelled before shipping
)

// Order is created exactly once per successful checkout. Billing and shipping
// are denormalized copies so order history survives later address edits.
// PaymentID carries a unique index: the same gateway payment can never
// materialize two orders, no matter how often the callback is replayed.
type Order struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	UserID         string          `gorm:"not null;index" json:"user_id"`
	ReceiptRef     string          `gorm:"uniqueIndex" json:"receipt_ref"`
	GatewayOrderID string          `gorm:"index" json:"gateway_order_id"`
	PaymentID      string          `gorm:"uniqueIndex" json:"payment_id"`
	PaymentMethod  string          `json:"payment_method"`
	Status         OrderStatus     `gorm:"type:VARCHAR(20);default:'pending'" json:"status"`
	Billing        AddressFields   `gorm:"embedded;embeddedPrefix:billing_" json:"billing"`
	Shipping       AddressFields   `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping"`
	ShippingCharge decimal.Decimal `gorm:"type:decimal(16,2)" json:"shipping_charge"`
	Total          decimal.Decimal `gorm:"type:decimal(16,2)" json:"total"`
	Items          []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt      time.Time       `json:"created_at"`
}

// OrderItem freezes quantity and price at time of purchase; order history must
// not change if the catalog price changes later.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"index" json:"order_id"`
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `gorm:"type:decimal(16,2)" json:"price"`
	Quantity    int             `json:"quantity"`
}
