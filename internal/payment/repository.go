package payment

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	SavePayment(ctx context.Context, p *Payment) error
	// GetSettledPayment returns the COMPLETED or REFUNDED payment of an
	// order; at most one such record exists at a time.
	GetSettledPayment(ctx context.Context, orderID uuid.UUID) (*Payment, error)
	GetLatestPayment(ctx context.Context, orderID uuid.UUID) (*Payment, error)
	MarkRefunded(ctx context.Context, paymentID uuid.UUID, refundTxID string, amount float64, refundedAt time.Time) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SavePayment(ctx context.Context, p *Payment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payments (
			id, order_id, transaction_id, amount, method, status,
			gateway_response, refund_amount, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		p.ID, p.OrderID, p.TransactionID, p.Amount, p.Method, p.Status,
		p.GatewayResponse, p.RefundAmount, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *repository) GetSettledPayment(ctx context.Context, orderID uuid.UUID) (*Payment, error) {
	return r.queryOne(ctx, `
		SELECT id, order_id, transaction_id, amount, method, status,
			gateway_response, refund_amount, refund_transaction_id, refunded_at,
			created_at, updated_at
		FROM payments
		WHERE order_id = $1 AND status IN ($2, $3)
		ORDER BY created_at DESC
		LIMIT 1
	`, orderID, StatusCompleted, StatusRefunded)
}

func (r *repository) GetLatestPayment(ctx context.Context, orderID uuid.UUID) (*Payment, error) {
	return r.queryOne(ctx, `
		SELECT id, order_id, transaction_id, amount, method, status,
			gateway_response, refund_amount, refund_transaction_id, refunded_at,
			created_at, updated_at
		FROM payments
		WHERE order_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, orderID)
}

func (r *repository) queryOne(ctx context.Context, query string, args ...any) (*Payment, error) {
	var p Payment
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&p.ID, &p.OrderID, &p.TransactionID, &p.Amount, &p.Method, &p.Status,
		&p.GatewayResponse, &p.RefundAmount, &p.RefundTransactionID, &p.RefundedAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// MarkRefunded transitions a COMPLETED payment to its terminal REFUNDED
// state. The status guard keeps the transition one-shot.
func (r *repository) MarkRefunded(
	ctx context.Context,
	paymentID uuid.UUID,
	refundTxID string,
	amount float64,
	refundedAt time.Time,
) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE payments
		SET status = $1, refund_amount = $2, refund_transaction_id = $3,
			refunded_at = $4, updated_at = NOW()
		WHERE id = $5 AND status = $6
	`, StatusRefunded, amount, refundTxID, refundedAt, paymentID, StatusCompleted)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrAlreadyRefunded
	}
	return nil
}
