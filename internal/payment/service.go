package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shopflow-be/internal/logger"
	"shopflow-be/internal/order"
	"shopflow-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	ProcessPayment(ctx context.Context, orderID uuid.UUID, method string, callerID int, role string) (*Payment, error)
	RefundPayment(ctx context.Context, orderID uuid.UUID, reason string) (*Payment, error)
	GetPaymentStatus(ctx context.Context, orderID uuid.UUID) (*Payment, error)
}

type service struct {
	repo      Repository
	orderRepo order.Repository
	gateway   Gateway
}

func NewService(repo Repository, orderRepo order.Repository, gateway Gateway) Service {
	return &service{
		repo:      repo,
		orderRepo: orderRepo,
		gateway:   gateway,
	}
}

// ProcessPayment captures the order total through the gateway. A decline is
// persisted as a FAILED record for audit and leaves the order untouched; a
// success records the COMPLETED payment and confirms a still-pending order.
// The gateway call holds no locks; order and payment rows are read before
// and written after it.
func (s *service) ProcessPayment(
	ctx context.Context,
	orderID uuid.UUID,
	method string,
	callerID int,
	role string,
) (*Payment, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ProcessPayment"),
		zap.String("order_id", orderID.String()),
	)

	o, err := s.orderRepo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if role != utils.RoleAdmin && o.UserID != callerID {
		return nil, ErrForbidden
	}

	existing, err := s.repo.GetSettledPayment(ctx, orderID)
	if err != nil && !errors.Is(err, ErrPaymentNotFound) {
		return nil, err
	}
	if existing != nil && existing.Status == StatusCompleted {
		log.Warn("capture refused, order already paid",
			zap.String("transaction_id", existing.TransactionID),
		)
		return nil, ErrAlreadyPaid
	}

	if method == "" {
		method = o.PaymentMethod
	}

	result, err := s.gateway.Capture(ctx, o.Total, method)
	if err != nil {
		log.Error("gateway capture errored", zap.Error(err))
		return nil, err
	}

	now := time.Now()
	p := &Payment{
		ID:              uuid.New(),
		OrderID:         orderID,
		TransactionID:   result.TransactionID,
		Amount:          o.Total,
		Method:          method,
		GatewayResponse: result.Raw,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if !result.Success {
		p.Status = StatusFailed
		if saveErr := s.repo.SavePayment(ctx, p); saveErr != nil {
			return nil, saveErr
		}
		log.Warn("capture declined", zap.String("message", result.Message))
		return nil, fmt.Errorf("%w: %s", ErrPaymentFailed, result.Message)
	}

	p.Status = StatusCompleted
	if err := s.repo.SavePayment(ctx, p); err != nil {
		return nil, err
	}

	confirmed, err := s.orderRepo.MarkPaymentCompleted(ctx, orderID)
	if err != nil {
		return nil, err
	}

	log.Info("payment captured",
		zap.String("transaction_id", p.TransactionID),
		zap.Float64("amount", p.Amount),
		zap.Bool("order_confirmed", confirmed),
	)

	return p, nil
}

// RefundPayment reverses a completed capture. It is deliberately not
// retryable after success: a refunded payment is terminal and a second
// attempt fails with ErrAlreadyRefunded rather than crediting twice.
// Fulfillment status is untouched; callers wanting the goods back must
// cancel the order separately.
func (s *service) RefundPayment(ctx context.Context, orderID uuid.UUID, reason string) (*Payment, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "RefundPayment"),
		zap.String("order_id", orderID.String()),
		zap.String("reason", reason),
	)

	p, err := s.repo.GetSettledPayment(ctx, orderID)
	if errors.Is(err, ErrPaymentNotFound) {
		return nil, ErrNoPayment
	}
	if err != nil {
		return nil, err
	}

	if p.Status == StatusRefunded {
		return nil, ErrAlreadyRefunded
	}

	result, err := s.gateway.Refund(ctx, p.TransactionID, p.Amount)
	if err != nil {
		log.Error("gateway refund errored", zap.Error(err))
		return nil, err
	}

	if !result.Success {
		log.Warn("refund declined", zap.String("message", result.Message))
		return nil, fmt.Errorf("%w: %s", ErrRefundFailed, result.Message)
	}

	refundedAt := time.Now()
	if err := s.repo.MarkRefunded(ctx, p.ID, result.RefundTransactionID, p.Amount, refundedAt); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SetPaymentState(ctx, orderID, order.PaymentRefunded); err != nil {
		return nil, err
	}

	p.Status = StatusRefunded
	p.RefundAmount = p.Amount
	p.RefundTransactionID = &result.RefundTransactionID
	p.RefundedAt = &refundedAt

	log.Info("payment refunded",
		zap.String("refund_transaction_id", result.RefundTransactionID),
		zap.Float64("amount", p.Amount),
	)

	return p, nil
}

func (s *service) GetPaymentStatus(ctx context.Context, orderID uuid.UUID) (*Payment, error) {
	return s.repo.GetLatestPayment(ctx, orderID)
}
