package models

import "time"

type Wishlist struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	UserID    string  `gorm:"uniqueIndex:idx_wishlist_user_product;not null" json:"user_id"`
	ProductID uint    `gorm:"uniqueIndex:idx_wishlist_user_product;not null" json:"product_id"`
	Product   Product `gorm:"foreignKey:ProductID" json:"product"`
	CreatedAt time.Time
}
