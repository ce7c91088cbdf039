package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	CartID       uint            `gorm:"primaryKey" json:"cart_id"`
	UserID       string          `gorm:"uniqueIndex"` // Enforces ONE cart per user
	Items        []CartItem      `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	Total        decimal.Decimal `gorm:"type:decimal(16,2)" json:"total"`
	DiscountCode string          `json:"discount_code,omitempty"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CartItem struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	CartID      uint   `gorm:"index" json:"cart_id"`
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	// Unit price at the time of the last mutation. The line total is always
	// Quantity * UnitPrice, recomputed on every change rather than maintained
	// incrementally.
	UnitPrice decimal.Decimal `gorm:"type:decimal(16,2)" json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `gorm:"type:decimal(16,2)" json:"line_total"`
	AddedAt   time.Time       `json:"added_at"`
}
