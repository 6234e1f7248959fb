package order

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrEmptyOrder        = errors.New("order must contain at least one item")
	ErrInvalidAddress    = errors.New("invalid shipping address")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrForbidden         = errors.New("not authorized to access this order")
	ErrCannotCancel      = errors.New("only pending or confirmed orders can be cancelled")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// StockShortage describes one line item that could not be covered.
type StockShortage struct {
	ProductID string `json:"product_id"`
	Product   string `json:"product"`
	Available int    `json:"available"`
	Requested int    `json:"requested"`
}

// InsufficientStockError aggregates every short line item of a create
// attempt so the caller sees all of them in one round trip.
type InsufficientStockError struct {
	Items []StockShortage
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		parts = append(parts, fmt.Sprintf(
			"%s (available: %d, requested: %d)",
			item.Product, item.Available, item.Requested,
		))
	}
	return "insufficient stock for: " + strings.Join(parts, ", ")
}

// TransitionError wraps ErrInvalidTransition with the offending pair.
func TransitionError(from, to OrderStatus) error {
	return fmt.Errorf("%w: cannot change status from %s to %s", ErrInvalidTransition, from, to)
}
