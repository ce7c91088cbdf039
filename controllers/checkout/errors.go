package checkoutControllers

import "errors"

var (
	// ErrEmptyCart blocks checkout before an intent is ever created.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrMissingAddress blocks checkout when the user has no saved billing or
	// shipping address.
	ErrMissingAddress = errors.New("billing and shipping addresses are required")

	// ErrUnknownAttempt means the callback references a gateway order this
	// user never created.
	ErrUnknownAttempt = errors.New("no payment attempt for this gateway order")

	// ErrAmountMismatch means the cart changed between intent creation and
	// the callback; the amount charged no longer matches the cart.
	ErrAmountMismatch = errors.New("cart total no longer matches the amount charged")
)

// StockError reports a line that failed re-validation at commit time. The
// whole transaction is rolled back and the cart preserved.
type StockError struct {
	ProductName string
	Available   int
	Requested   int
}

func (e *StockError) Error() string {
	return "insufficient stock for " + e.ProductName
}
