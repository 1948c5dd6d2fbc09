package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/hackathonweekly/ticketing/internal/model"
	apperrors "github.com/hackathonweekly/ticketing/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository interface {
	List(ctx context.Context) ([]*model.Order, error)
	FindByID(ctx context.Context, id int) (*model.Order, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Order, error)
	FindByRegistrationID(ctx context.Context, registrationID int) (*model.Order, error)
	// ListExpiredPending 掃描付款窗口已過的待付款訂單，keyset 分頁供 sweeper 分批處理
	ListExpiredPending(ctx context.Context, now time.Time, afterID int, limit int) ([]*model.Order, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, order *model.Order) (*model.Order, error)
	TransitionStatus(ctx context.Context, tx pgx.Tx, id int, from, to model.OrderStatus) (*model.Order, error)
}

type OrderRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &OrderRepositoryImpl{
		pool: pool,
	}
}

const orderColumns = `id, order_id, registration_id, ticket_type_id, quantity,
		unit_price, total_amount, currency, status,
		created_at, updated_at, expires_at, paid_at, refunded_at, refund_amount`

func scanOrder(row pgx.Row, order *model.Order) error {
	return row.Scan(
		&order.ID,
		&order.OrderID,
		&order.RegistrationID,
		&order.TicketTypeID,
		&order.Quantity,
		&order.UnitPrice,
		&order.TotalAmount,
		&order.Currency,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.ExpiresAt,
		&order.PaidAt,
		&order.RefundedAt,
		&order.RefundAmount,
	)
}

func (r *OrderRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, order *model.Order) (*model.Order, error) {
	query := `
		INSERT INTO orders (
			order_id, registration_id, ticket_type_id, quantity,
			unit_price, total_amount, currency, status, expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + orderColumns

	err := scanOrder(tx.QueryRow(ctx, query,
		order.OrderID, order.RegistrationID, order.TicketTypeID, order.Quantity,
		order.UnitPrice, order.TotalAmount, order.Currency, order.Status, order.ExpiresAt,
	), order)

	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	return order, nil
}

func (r *OrderRepositoryImpl) List(ctx context.Context) ([]*model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		ORDER BY created_at DESC
	`

	return r.queryMany(ctx, query)
}

func (r *OrderRepositoryImpl) ListExpiredPending(ctx context.Context, now time.Time, afterID int, limit int) ([]*model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE status = $1 AND expires_at < $2 AND id > $3
		ORDER BY id
		LIMIT $4
	`

	return r.queryMany(ctx, query, model.OrderStatusPending, now, afterID, limit)
}

func (r *OrderRepositoryImpl) queryMany(ctx context.Context, query string, args ...interface{}) ([]*model.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]*model.Order, 0)

	for rows.Next() {
		var order model.Order
		if err := scanOrder(rows, &order); err != nil {
			return nil, err
		}
		orders = append(orders, &order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *OrderRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id = $1
	`
	return r.queryOne(ctx, query, id)
}

func (r *OrderRepositoryImpl) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE order_id = $1
	`
	return r.queryOne(ctx, query, orderID)
}

func (r *OrderRepositoryImpl) FindByRegistrationID(ctx context.Context, registrationID int) (*model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE registration_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	return r.queryOne(ctx, query, registrationID)
}

func (r *OrderRepositoryImpl) queryOne(ctx context.Context, query string, arg interface{}) (*model.Order, error) {
	var order model.Order
	err := scanOrder(r.pool.QueryRow(ctx, query, arg), &order)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, err
	}

	return &order, nil
}

// TransitionStatus 帶守衛的狀態轉換：單一條件式 UPDATE，WHERE 鎖定來源狀態，
// 兩個並發轉換只有先落地的生效，輸家拿到 ErrOrderStatusConflict 而不是被靜默合併。
// 進入 PAID 蓋 paid_at；進入 REFUNDED 蓋 refunded_at 並把 refund_amount
// 寫死為 total_amount（全額退款不變式在 SQL 層鎖死）。
func (r *OrderRepositoryImpl) TransitionStatus(
	ctx context.Context,
	tx pgx.Tx,
	id int,
	from, to model.OrderStatus,
) (*model.Order, error) {
	if !from.CanTransitionTo(to) {
		return nil, apperrors.ErrOrderStatusConflict
	}

	query := `
		UPDATE orders
		SET status = $1::text,
		    paid_at = CASE WHEN $1::text = 'PAID' THEN $2 ELSE paid_at END,
		    refunded_at = CASE WHEN $1::text = 'REFUNDED' THEN $2 ELSE refunded_at END,
		    refund_amount = CASE WHEN $1::text = 'REFUNDED' THEN total_amount ELSE refund_amount END,
		    updated_at = $2
		WHERE id = $3 AND status = $4
		RETURNING ` + orderColumns

	var order model.Order
	err := scanOrder(tx.QueryRow(ctx, query, to, time.Now().UTC(), id, from), &order)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, r.classifyTransitionFailure(ctx, tx, id)
		}
		return nil, fmt.Errorf("failed to transition order status: %w", err)
	}

	return &order, nil
}

// classifyTransitionFailure 零列生效時區分：訂單不存在 / 狀態已被別的轉換搶先
func (r *OrderRepositoryImpl) classifyTransitionFailure(ctx context.Context, tx pgx.Tx, id int) error {
	var status model.OrderStatus
	err := tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1`, id).Scan(&status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.ErrOrderNotFound
		}
		return err
	}
	return apperrors.ErrOrderStatusConflict
}
