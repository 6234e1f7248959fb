package order

import (
	"context"
	"time"

	"shopflow-be/internal/logger"
	"shopflow-be/internal/product"
	"shopflow-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	CreateOrder(ctx context.Context, userID int, input CreateOrderInput) (*Order, error)
	GetOrder(ctx context.Context, orderID uuid.UUID, callerID int, role string) (*Order, error)
	ListOrdersForUser(ctx context.Context, userID int, filter *ListFilter, limit, page *int32) ([]*Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, newStatus OrderStatus, note *string) (*Order, error)
	CancelOrder(ctx context.Context, orderID uuid.UUID, reason string, callerID int, role string) (*Order, error)
	GetOrderStats(ctx context.Context) (*OrderStats, error)
	GenerateInvoice(ctx context.Context, orderID uuid.UUID, callerID int, role string) (*Invoice, error)
}

type service struct {
	repo        Repository
	productRepo product.Repository
}

func NewService(repo Repository, productRepo product.Repository) Service {
	return &service{
		repo:        repo,
		productRepo: productRepo,
	}
}

func validAddress(a ShippingAddress) bool {
	return a.Street != "" && a.City != "" && a.State != "" && a.Zip != "" && a.Country != ""
}

// CreateOrder validates the request, snapshots product name/price per line
// item, prices the order, and reserves stock atomically with the insert.
//
// Existence failures fail fast with product.ErrNotFound; quantity shortages
// are aggregated across all items before failing, matching the distinction
// between "you asked for something that does not exist" and "you asked for
// more than we have".
func (s *service) CreateOrder(ctx context.Context, userID int, input CreateOrderInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
		zap.Int("user_id", userID),
		zap.Int("item_count", len(input.Items)),
	)

	if len(input.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	if !validAddress(input.Shipping) {
		return nil, ErrInvalidAddress
	}

	items := make([]OrderItem, 0, len(input.Items))
	lineAmounts := make([]float64, 0, len(input.Items))
	var shortages []StockShortage

	for i, line := range input.Items {
		if line.Quantity <= 0 {
			log.Warn("invalid quantity", zap.Int("index", i))
			return nil, ErrInvalidQuantity
		}

		p, err := s.productRepo.GetProduct(ctx, line.ProductID)
		if err != nil {
			log.Warn("product lookup failed",
				zap.String("product_id", line.ProductID.String()),
				zap.Error(err),
			)
			return nil, err
		}
		if !p.Active {
			return nil, product.ErrNotFound
		}

		if p.Stock < line.Quantity {
			shortages = append(shortages, StockShortage{
				ProductID: p.ID.String(),
				Product:   p.Name,
				Available: p.Stock,
				Requested: line.Quantity,
			})
		}

		items = append(items, OrderItem{
			ID:        uuid.New(),
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  line.Quantity,
		})
		lineAmounts = append(lineAmounts, p.Price*float64(line.Quantity))
	}

	if len(shortages) > 0 {
		log.Warn("insufficient stock", zap.Int("short_items", len(shortages)))
		return nil, &InsufficientStockError{Items: shortages}
	}

	pricing := utils.CalculateTotal(lineAmounts, input.DiscountPercent)

	now := time.Now()
	o := &Order{
		ID:            uuid.New(),
		OrderNumber:   utils.GenerateOrderNumber(),
		UserID:        userID,
		Items:         items,
		Shipping:      input.Shipping,
		PaymentMethod: input.PaymentMethod,
		Subtotal:      pricing.Subtotal,
		Tax:           pricing.Tax,
		Discount:      pricing.Discount,
		Total:         pricing.Total,
		Status:        StatusPending,
		PaymentState:  PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
	}

	if err := s.repo.CreateOrderTx(ctx, o); err != nil {
		return nil, err
	}

	o.StatusHistory = []StatusChange{{Status: StatusPending, ChangedAt: now}}

	log.Info("order created",
		zap.String("order_id", o.ID.String()),
		zap.String("order_number", o.OrderNumber),
		zap.Float64("total", o.Total),
	)

	return o, nil
}

// GetOrder returns one order; users only see their own, admins see all.
func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID, callerID int, role string) (*Order, error) {
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if role != utils.RoleAdmin && o.UserID != callerID {
		return nil, ErrForbidden
	}

	return o, nil
}

func (s *service) ListOrdersForUser(
	ctx context.Context,
	userID int,
	filter *ListFilter,
	limit, page *int32,
) ([]*Order, error) {

	finalLimit := int32(10)
	finalPage := int32(1)

	if limit != nil && *limit > 0 {
		finalLimit = *limit
	}
	if page != nil && *page > 0 {
		finalPage = *page
	}
	if finalLimit > 100 {
		finalLimit = 100
	}

	offset := (finalPage - 1) * finalLimit

	return s.repo.FetchOrdersByUser(ctx, userID, filter, finalLimit, offset)
}

// UpdateOrderStatus drives the fulfillment state machine. The transition
// table is total: anything not explicitly allowed is rejected. No stock
// side effects here; cancellation goes through CancelOrder.
func (s *service) UpdateOrderStatus(
	ctx context.Context,
	orderID uuid.UUID,
	newStatus OrderStatus,
	note *string,
) (*Order, error) {

	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !CanTransition(o.Status, newStatus) {
		return nil, TransitionError(o.Status, newStatus)
	}

	if err := s.repo.UpdateOrderStatus(ctx, orderID, o.Status, newStatus, note); err != nil {
		return nil, err
	}

	o.Status = newStatus
	o.StatusHistory = append(o.StatusHistory, StatusChange{
		Status:    newStatus,
		Note:      note,
		ChangedAt: time.Now(),
	})

	return o, nil
}

// CancelOrder undoes the reservation made at creation. Permitted only from
// PENDING or CONFIRMED and only by the owner or an admin. A cancelled order
// cancelled again fails with ErrCannotCancel; stock is credited exactly once.
func (s *service) CancelOrder(
	ctx context.Context,
	orderID uuid.UUID,
	reason string,
	callerID int,
	role string,
) (*Order, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CancelOrder"),
		zap.String("order_id", orderID.String()),
	)

	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if role != utils.RoleAdmin && o.UserID != callerID {
		return nil, ErrForbidden
	}

	if !Cancellable(o.Status) {
		log.Warn("cancellation rejected", zap.String("status", string(o.Status)))
		return nil, ErrCannotCancel
	}

	if err := s.repo.CancelOrderTx(ctx, o.ID, o.Items, reason); err != nil {
		return nil, err
	}

	o.Status = StatusCancelled
	o.CancelReason = &reason

	log.Info("order cancelled", zap.String("reason", reason))

	return o, nil
}

func (s *service) GetOrderStats(ctx context.Context) (*OrderStats, error) {
	return s.repo.GetOrderStats(ctx)
}
