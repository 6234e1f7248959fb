package order

import (
	"context"
	"time"

	"shopflow-be/internal/utils"

	"github.com/google/uuid"
)

type InvoiceLine struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Total    float64 `json:"total"`
}

type InvoiceSummary struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
}

// Invoice is a receipt view over a stored order. It is derived entirely
// from the order's immutable snapshots; producing one mutates nothing.
type Invoice struct {
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceDate   time.Time       `json:"invoice_date"`
	OrderNumber   string          `json:"order_number"`
	OrderDate     time.Time       `json:"order_date"`
	Status        OrderStatus     `json:"status"`
	Items         []InvoiceLine   `json:"items"`
	Shipping      ShippingAddress `json:"shipping_address"`
	Summary       InvoiceSummary  `json:"summary"`
}

func (s *service) GenerateInvoice(ctx context.Context, orderID uuid.UUID, callerID int, role string) (*Invoice, error) {
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if role != utils.RoleAdmin && o.UserID != callerID {
		return nil, ErrForbidden
	}

	return BuildInvoice(o), nil
}

// BuildInvoice projects an order into its invoice view.
func BuildInvoice(o *Order) *Invoice {
	lines := make([]InvoiceLine, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, InvoiceLine{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price,
			Total:    utils.Round2(item.Price * float64(item.Quantity)),
		})
	}

	return &Invoice{
		InvoiceNumber: "INV-" + o.OrderNumber,
		InvoiceDate:   time.Now(),
		OrderNumber:   o.OrderNumber,
		OrderDate:     o.CreatedAt,
		Status:        o.Status,
		Items:         lines,
		Shipping:      o.Shipping,
		Summary: InvoiceSummary{
			Subtotal: o.Subtotal,
			Tax:      o.Tax,
			Discount: o.Discount,
			Total:    o.Total,
		},
	}
}
