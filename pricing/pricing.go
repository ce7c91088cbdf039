// Package pricing resolves the final checkout total from the cart total and
// the site-wide shipping configuration.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storelane/storefront-api/models"
)

// ShippingCharge reads the singleton site settings row. No row means free
// shipping; there is no tax or per-region logic.
func ShippingCharge(db *gorm.DB) decimal.Decimal {
	var settings models.SiteSettings
	if err := db.First(&settings).Error; err != nil {
		return decimal.Zero
	}
	return settings.ShippingCharge
}

// FinalTotal is cart total plus shipping.
func FinalTotal(cartTotal, shipping decimal.Decimal) decimal.Decimal {
	return cartTotal.Add(shipping)
}

// ErrFractionalPaise rejects totals that do not convert cleanly to minor
// units instead of silently truncating them.
var ErrFractionalPaise = errors.New("pricing: total does not convert to whole minor units")

// ToMinorUnits converts a rupee amount to integer paise. All cart and order
// arithmetic is decimal, so a fractional result here means corrupt data, not
// rounding drift.
func ToMinorUnits(amount decimal.Decimal) (int64, error) {
	paise := amount.Mul(decimal.NewFromInt(100))
	if !paise.IsInteger() {
		return 0, ErrFractionalPaise
	}
	return paise.IntPart(), nil
}
