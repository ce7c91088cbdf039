package models

import "time"

type AddressFields struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zipcode  string `json:"zipcode"`
	Country  string `json:"country"`
	Phone    string `json:"phone"`
}

// At most one billing address per user; saving overwrites the existing record.
type BillingAddress struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	UserID        string `gorm:"uniqueIndex;not null" json:"user_id"`
	AddressFields `gorm:"embedded"`
	UpdatedAt     time.Time
}

// Same upsert semantics as BillingAddress.
type ShippingAddress struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	UserID        string `gorm:"uniqueIndex;not null" json:"user_id"`
	AddressFields `gorm:"embedded"`
	UpdatedAt     time.Time
}
