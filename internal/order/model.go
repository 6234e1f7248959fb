package order

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusConfirmed  OrderStatus = "CONFIRMED"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusShipped    OrderStatus = "SHIPPED"
	StatusDelivered  OrderStatus = "DELIVERED"
	StatusCancelled  OrderStatus = "CANCELLED"
)

type PaymentState string

const (
	PaymentPending   PaymentState = "PENDING"
	PaymentCompleted PaymentState = "COMPLETED"
	PaymentFailed    PaymentState = "FAILED"
	PaymentRefunded  PaymentState = "REFUNDED"
)

// validTransitions is the total transition table for order fulfillment.
// Any (current, requested) pair not listed here is rejected.
// DELIVERED and CANCELLED are terminal.
var validTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// CanTransition reports whether the state machine allows moving
// from the current status to the requested one.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Cancellable reports whether an order in the given status may still be
// cancelled by its owner.
func Cancellable(status OrderStatus) bool {
	return status == StatusPending || status == StatusConfirmed
}

type ShippingAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// OrderItem is an immutable snapshot of a product at order time.
// Catalog price changes never retroactively alter existing orders.
type OrderItem struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Quantity  int       `json:"quantity"`
}

type StatusChange struct {
	Status    OrderStatus `json:"status"`
	Note      *string     `json:"note,omitempty"`
	ChangedAt time.Time   `json:"changed_at"`
}

type Order struct {
	ID            uuid.UUID       `json:"id"`
	OrderNumber   string          `json:"order_number"`
	UserID        int             `json:"user_id"`
	Items         []OrderItem     `json:"items"`
	Shipping      ShippingAddress `json:"shipping_address"`
	PaymentMethod string          `json:"payment_method"`
	Subtotal      float64         `json:"subtotal"`
	Tax           float64         `json:"tax"`
	Discount      float64         `json:"discount"`
	Total         float64         `json:"total"`
	Status        OrderStatus     `json:"status"`
	PaymentState  PaymentState    `json:"payment_status"`
	StatusHistory []StatusChange  `json:"status_history"`
	CancelReason  *string         `json:"cancel_reason,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type LineItemInput struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type CreateOrderInput struct {
	Items           []LineItemInput `json:"items"`
	Shipping        ShippingAddress `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
	DiscountPercent float64         `json:"discount_percent"`
}

type ListFilter struct {
	Status   *OrderStatus
	DateFrom *time.Time
	DateTo   *time.Time
}

// StatusStat aggregates order count and revenue for one status.
type StatusStat struct {
	Status  OrderStatus `json:"status"`
	Count   int64       `json:"count"`
	Revenue float64     `json:"revenue"`
}

type OrderStats struct {
	ByStatus     []StatusStat `json:"stats"`
	TotalOrders  int64        `json:"total_orders"`
	TotalRevenue float64      `json:"total_revenue"`
}
