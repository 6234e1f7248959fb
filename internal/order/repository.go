package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shopflow-be/internal/db"
	"shopflow-be/internal/logger"
	"shopflow-be/internal/product"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository interface {
	CreateOrderTx(ctx context.Context, o *Order) error
	GetOrder(ctx context.Context, orderID uuid.UUID) (*Order, error)
	FetchOrdersByUser(ctx context.Context, userID int, filter *ListFilter, limit, offset int32) ([]*Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, from, to OrderStatus, note *string) error
	CancelOrderTx(ctx context.Context, orderID uuid.UUID, items []OrderItem, reason string) error
	MarkPaymentCompleted(ctx context.Context, orderID uuid.UUID) (confirmed bool, err error)
	SetPaymentState(ctx context.Context, orderID uuid.UUID, state PaymentState) error
	GetOrderStats(ctx context.Context) (*OrderStats, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(database *sql.DB) Repository {
	return &repository{db: database}
}

// CreateOrderTx persists the order, its line-item snapshots, the initial
// history entry, and the stock reservation for every item as one unit.
// A commit-time shortage (stale check lost to a concurrent order) rolls
// back everything and surfaces as InsufficientStockError.
func (r *repository) CreateOrderTx(ctx context.Context, o *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateOrderTx"),
		zap.String("order_id", o.ID.String()),
		zap.Int("item_count", len(o.Items)),
	)

	err := db.RunAtomic(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO orders (
				id, order_number, user_id,
				street, city, state, zip, country,
				payment_method, subtotal, tax, discount, total,
				status, payment_status, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		`,
			o.ID, o.OrderNumber, o.UserID,
			o.Shipping.Street, o.Shipping.City, o.Shipping.State, o.Shipping.Zip, o.Shipping.Country,
			o.PaymentMethod, o.Subtotal, o.Tax, o.Discount, o.Total,
			o.Status, o.PaymentState, o.CreatedAt, o.UpdatedAt,
		)
		if err != nil {
			return err
		}

		for _, item := range o.Items {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO order_items (id, order_id, product_id, name, price, quantity)
				VALUES ($1,$2,$3,$4,$5,$6)
			`, item.ID, o.ID, item.ProductID, item.Name, item.Price, item.Quantity)
			if err != nil {
				return err
			}

			ok, err := product.ReserveStock(ctx, tx, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				var available int
				if scanErr := tx.QueryRowContext(ctx,
					`SELECT stock FROM products WHERE id = $1`, item.ProductID,
				).Scan(&available); scanErr != nil {
					available = 0
				}
				return &InsufficientStockError{Items: []StockShortage{{
					ProductID: item.ProductID.String(),
					Product:   item.Name,
					Available: available,
					Requested: item.Quantity,
				}}}
			}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_status_history (order_id, status, changed_at)
			VALUES ($1,$2,$3)
		`, o.ID, o.Status, o.CreatedAt)
		return err
	})

	if err != nil {
		log.Warn("order creation transaction failed", zap.Error(err))
		return err
	}

	log.Info("order created", zap.String("order_number", o.OrderNumber))
	return nil
}

func (r *repository) GetOrder(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	var o Order
	err := r.db.QueryRowContext(ctx, `
		SELECT id, order_number, user_id,
			street, city, state, zip, country,
			payment_method, subtotal, tax, discount, total,
			status, payment_status, cancel_reason, created_at, updated_at
		FROM orders WHERE id = $1
	`, orderID).Scan(
		&o.ID, &o.OrderNumber, &o.UserID,
		&o.Shipping.Street, &o.Shipping.City, &o.Shipping.State, &o.Shipping.Zip, &o.Shipping.Country,
		&o.PaymentMethod, &o.Subtotal, &o.Tax, &o.Discount, &o.Total,
		&o.Status, &o.PaymentState, &o.CancelReason, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, name, price, quantity
		FROM order_items WHERE order_id = $1
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Name, &item.Price, &item.Quantity); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	histRows, err := r.db.QueryContext(ctx, `
		SELECT status, note, changed_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY changed_at ASC, id ASC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer histRows.Close()

	for histRows.Next() {
		var change StatusChange
		if err := histRows.Scan(&change.Status, &change.Note, &change.ChangedAt); err != nil {
			return nil, err
		}
		o.StatusHistory = append(o.StatusHistory, change)
	}
	if err := histRows.Err(); err != nil {
		return nil, err
	}

	return &o, nil
}

func (r *repository) FetchOrdersByUser(
	ctx context.Context,
	userID int,
	filter *ListFilter,
	limit, offset int32,
) ([]*Order, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("method", "FetchOrdersByUser"),
		zap.Int("user_id", userID),
		zap.Int32("limit", limit),
		zap.Int32("offset", offset),
	)

	query := `
		SELECT o.id, o.order_number, o.user_id, o.subtotal, o.tax, o.discount, o.total,
			o.status, o.payment_status, o.created_at, o.updated_at
		FROM orders o
		WHERE o.user_id = $1
	`
	args := []any{userID}
	argIndex := 2

	if filter != nil {
		if filter.Status != nil {
			query += fmt.Sprintf(" AND o.status = $%d", argIndex)
			args = append(args, *filter.Status)
			argIndex++
		}
		if filter.DateFrom != nil {
			query += fmt.Sprintf(" AND o.created_at >= $%d", argIndex)
			args = append(args, *filter.DateFrom)
			argIndex++
		}
		if filter.DateTo != nil {
			query += fmt.Sprintf(" AND o.created_at <= $%d", argIndex)
			args = append(args, *filter.DateTo)
			argIndex++
		}
	}

	query += fmt.Sprintf(" ORDER BY o.created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(
			&o.ID, &o.OrderNumber, &o.UserID, &o.Subtotal, &o.Tax, &o.Discount, &o.Total,
			&o.Status, &o.PaymentState, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			log.Error("failed to scan order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

// UpdateOrderStatus applies a validated transition with a compare-and-swap
// on the current status, so a concurrent transition cannot be overwritten.
func (r *repository) UpdateOrderStatus(
	ctx context.Context,
	orderID uuid.UUID,
	from, to OrderStatus,
	note *string,
) error {
	return db.RunAtomic(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE orders SET status = $1, updated_at = NOW()
			WHERE id = $2 AND status = $3
		`, to, orderID, from)
		if err != nil {
			return err
		}

		affected, _ := res.RowsAffected()
		if affected == 0 {
			return TransitionError(from, to)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_status_history (order_id, status, note, changed_at)
			VALUES ($1,$2,$3,NOW())
		`, orderID, to, note)
		return err
	})
}

// CancelOrderTx is the exact inverse of the reservation done at creation:
// it flips the order to CANCELLED and credits every reserved quantity back,
// atomically. The status guard makes a second cancellation fail instead of
// double-crediting stock.
func (r *repository) CancelOrderTx(
	ctx context.Context,
	orderID uuid.UUID,
	items []OrderItem,
	reason string,
) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CancelOrderTx"),
		zap.String("order_id", orderID.String()),
	)

	err := db.RunAtomic(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE orders SET status = $1, cancel_reason = $2, updated_at = NOW()
			WHERE id = $3 AND status IN ($4, $5)
		`, StatusCancelled, reason, orderID, StatusPending, StatusConfirmed)
		if err != nil {
			return err
		}

		affected, _ := res.RowsAffected()
		if affected == 0 {
			return ErrCannotCancel
		}

		for _, item := range items {
			if err := product.ReleaseStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_status_history (order_id, status, note, changed_at)
			VALUES ($1,$2,$3,NOW())
		`, orderID, StatusCancelled, reason)
		return err
	})

	if err != nil {
		return err
	}

	log.Info("order cancelled, stock restored", zap.Int("item_count", len(items)))
	return nil
}

// MarkPaymentCompleted records a successful capture on the order. The first
// successful capture of a still-pending order also advances it to CONFIRMED.
func (r *repository) MarkPaymentCompleted(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var confirmed bool

	err := db.RunAtomic(ctx, r.db, func(tx *sql.Tx) error {
		var status OrderStatus
		err := tx.QueryRowContext(ctx,
			`SELECT status FROM orders WHERE id = $1 FOR UPDATE`, orderID,
		).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}

		confirmed = status == StatusPending

		if confirmed {
			_, err = tx.ExecContext(ctx, `
				UPDATE orders SET payment_status = $1, status = $2, updated_at = NOW()
				WHERE id = $3
			`, PaymentCompleted, StatusConfirmed, orderID)
			if err != nil {
				return err
			}

			_, err = tx.ExecContext(ctx, `
				INSERT INTO order_status_history (order_id, status, changed_at)
				VALUES ($1,$2,NOW())
			`, orderID, StatusConfirmed)
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE orders SET payment_status = $1, updated_at = NOW()
			WHERE id = $2
		`, PaymentCompleted, orderID)
		return err
	})

	return confirmed, err
}

func (r *repository) SetPaymentState(ctx context.Context, orderID uuid.UUID, state PaymentState) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET payment_status = $1, updated_at = NOW() WHERE id = $2
	`, state, orderID)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *repository) GetOrderStats(ctx context.Context) (*OrderStats, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(total), 0)
		FROM orders
		GROUP BY status
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &OrderStats{}
	for rows.Next() {
		var s StatusStat
		if err := rows.Scan(&s.Status, &s.Count, &s.Revenue); err != nil {
			return nil, err
		}
		stats.ByStatus = append(stats.ByStatus, s)
		stats.TotalOrders += s.Count
		stats.TotalRevenue += s.Revenue
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
