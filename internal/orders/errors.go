package orders

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidOrderRequest = errors.New("invalid order request")
	ErrOrderNotFound       = errors.New("order not found")
	ErrBookNotFound        = errors.New("book not found")
	ErrUserNotFound        = errors.New("user not found")
)

// InsufficientStockError names the offending book so the caller can say
// which line item failed.
type InsufficientStockError struct {
	BookID    string
	Title     string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for book %q: requested %d, available %d",
		e.Title, e.Requested, e.Available)
}
