package checkout

import (
	"errors"
	"fmt"
)

// Closed error taxonomy for the checkout engine. Handlers branch on these
// with errors.Is/As; anything else is a storage failure and maps to a 500.
var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("only pending orders can be cancelled")
	ErrInvalidStatus     = errors.New("invalid order status")
)

// InsufficientStockError names the first product whose cart quantity exceeds
// available stock. The whole checkout fails; no stock changes persist.
type InsufficientStockError struct {
	Product string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s", e.Product)
}
