package models

import "time"

type AttemptState string

const (
	AttemptCreated  AttemptState = "created"  // gateway order created, awaiting payment
	AttemptCaptured AttemptState = "captured" // order committed
	AttemptFailed   AttemptState = "failed"   // signature mismatch or gateway decline
)

// PaymentAttempt records a checkout's gateway order reference and the amount
// quoted to the gateway, so the callback can be matched against what was
// actually charged. Together with the unique index on Order.PaymentID it forms
// the processed-payment ledger that keeps replayed callbacks from creating a
// second order.
type PaymentAttempt struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	UserID         string       `gorm:"index;not null" json:"user_id"`
	GatewayOrderID string       `gorm:"uniqueIndex;not null" json:"gateway_order_id"`
	PaymentID      string       `json:"payment_id"`
	AmountPaise    int64        `json:"amount_paise"`
	Currency       string       `json:"currency"`
	State          AttemptState `gorm:"type:VARCHAR(20);default:'created'" json:"state"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
