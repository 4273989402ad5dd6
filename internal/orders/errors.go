package orders

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyOrder rejects a cart with no items. Checked before any
	// transaction is opened.
	ErrEmptyOrder = errors.New("order has no items")

	// ErrInvalidQuantity rejects a cart line with a non-positive carton
	// count.
	ErrInvalidQuantity = errors.New("carton quantity must be positive")

	// ErrInvalidRequest covers malformed order requests beyond the two
	// specific cases above (missing customer name, godown, product id).
	ErrInvalidRequest = errors.New("invalid order request")

	ErrInvalidStatus = errors.New("invalid order status")

	ErrOrderNotFound = errors.New("order not found")
)

// ProductNotFoundError marks a cart line referencing a product that does
// not exist. The whole transaction rolls back.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product not found: %d", e.ProductID)
}
