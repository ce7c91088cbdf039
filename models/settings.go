package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SiteSettings is a singleton row. Shipping defaults to zero when no row
// exists.
type SiteSettings struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	ShippingCharge decimal.Decimal `gorm:"type:decimal(16,2)" json:"shipping_charge"`
	UpdatedAt      time.Time
}
