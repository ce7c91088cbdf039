package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"not null" json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"price"`
	Image       string          `json:"image"`
	Published   bool            `gorm:"default:true;index" json:"published"`
	Featured    bool            `gorm:"default:false" json:"featured"`
	Inventory   Inventory       `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"inventory"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Inventory is the single source of truth for availability. StockQuantity is
// only ever decremented inside the order-commit transaction.
type Inventory struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	ProductID     uint `gorm:"uniqueIndex" json:"product_id"`
	StockQuantity int  `gorm:"not null;default:0" json:"stock_quantity"`
	UpdatedAt     time.Time
}
