package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hackathonweekly/ticketing/internal/model"
	apperrors "github.com/hackathonweekly/ticketing/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketTypeRepository interface {
	Create(ctx context.Context, tt *model.TicketType) (*model.TicketType, error)
	List(ctx context.Context) ([]*model.TicketType, error)
	ListByEventID(ctx context.Context, eventID int) ([]*model.TicketType, error)
	FindByID(ctx context.Context, id int) (*model.TicketType, error)
	FindByTicketTypeID(ctx context.Context, ticketTypeID uuid.UUID) (*model.TicketType, error)
	Update(ctx context.Context, id int, values map[string]interface{}) (*model.TicketType, error)
	ReplaceTiers(ctx context.Context, id int, tiers []model.PriceTier) error
	Delete(ctx context.Context, id int) error

	// Capacity ledger：唯一允許動 current_quantity 的入口
	Reserve(ctx context.Context, tx pgx.Tx, id int, quantity int) error
	Release(ctx context.Context, tx pgx.Tx, id int, quantity int) error
}

type TicketTypeRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewTicketTypeRepository(pool *pgxpool.Pool) TicketTypeRepository {
	return &TicketTypeRepositoryImpl{
		pool: pool,
	}
}

const ticketTypeColumns = `id, ticket_type_id, event_id, name, base_price, currency,
		max_quantity, current_quantity, is_active, sort_order,
		created_at, updated_at, deleted_at`

func scanTicketType(row pgx.Row, tt *model.TicketType) error {
	return row.Scan(
		&tt.ID,
		&tt.TicketTypeID,
		&tt.EventID,
		&tt.Name,
		&tt.BasePrice,
		&tt.Currency,
		&tt.MaxQuantity,
		&tt.CurrentQuantity,
		&tt.IsActive,
		&tt.SortOrder,
		&tt.CreatedAt,
		&tt.UpdatedAt,
		&tt.DeletedAt,
	)
}

func (r *TicketTypeRepositoryImpl) Create(ctx context.Context, tt *model.TicketType) (*model.TicketType, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO ticket_types (
			ticket_type_id, event_id, name, base_price, currency,
			max_quantity, is_active, sort_order
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + ticketTypeColumns

	err = scanTicketType(tx.QueryRow(ctx, query,
		tt.TicketTypeID, tt.EventID, tt.Name, tt.BasePrice, tt.Currency,
		tt.MaxQuantity, tt.IsActive, tt.SortOrder,
	), tt)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticket type: %w", err)
	}

	if err := r.insertTiers(ctx, tx, tt.ID, tt.PriceTiers); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return tt, nil
}

func (r *TicketTypeRepositoryImpl) insertTiers(ctx context.Context, tx pgx.Tx, ticketTypeID int, tiers []model.PriceTier) error {
	query := `
		INSERT INTO price_tiers (ticket_type_id, quantity, price, currency, sort_order)
		VALUES ($1, $2, $3, $4, $5)
	`
	for i := range tiers {
		tiers[i].TicketTypeID = ticketTypeID
		_, err := tx.Exec(ctx, query,
			ticketTypeID, tiers[i].Quantity, tiers[i].Price, tiers[i].Currency, tiers[i].SortOrder,
		)
		if err != nil {
			return fmt.Errorf("failed to insert price tier: %w", err)
		}
	}
	return nil
}

func (r *TicketTypeRepositoryImpl) loadTiers(ctx context.Context, ticketTypeIDs []int) (map[int][]model.PriceTier, error) {
	query := `
		SELECT id, ticket_type_id, quantity, price, currency, sort_order
		FROM price_tiers
		WHERE ticket_type_id = ANY($1)
		ORDER BY sort_order, quantity
	`

	rows, err := r.pool.Query(ctx, query, ticketTypeIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tiers := make(map[int][]model.PriceTier)
	for rows.Next() {
		var tier model.PriceTier
		err := rows.Scan(
			&tier.ID,
			&tier.TicketTypeID,
			&tier.Quantity,
			&tier.Price,
			&tier.Currency,
			&tier.SortOrder,
		)
		if err != nil {
			return nil, err
		}
		tiers[tier.TicketTypeID] = append(tiers[tier.TicketTypeID], tier)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tiers, nil
}

func (r *TicketTypeRepositoryImpl) List(ctx context.Context) ([]*model.TicketType, error) {
	query := `
		SELECT ` + ticketTypeColumns + `
		FROM ticket_types
		WHERE deleted_at IS NULL
		ORDER BY sort_order, created_at
	`
	return r.queryMany(ctx, query)
}

func (r *TicketTypeRepositoryImpl) ListByEventID(ctx context.Context, eventID int) ([]*model.TicketType, error) {
	query := `
		SELECT ` + ticketTypeColumns + `
		FROM ticket_types
		WHERE event_id = $1 AND deleted_at IS NULL
		ORDER BY sort_order, created_at
	`
	return r.queryMany(ctx, query, eventID)
}

func (r *TicketTypeRepositoryImpl) queryMany(ctx context.Context, query string, args ...interface{}) ([]*model.TicketType, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ticketTypes := make([]*model.TicketType, 0)
	ids := make([]int, 0)

	for rows.Next() {
		var tt model.TicketType
		if err := scanTicketType(rows, &tt); err != nil {
			return nil, err
		}
		ticketTypes = append(ticketTypes, &tt)
		ids = append(ids, tt.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) > 0 {
		tiers, err := r.loadTiers(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, tt := range ticketTypes {
			tt.PriceTiers = tiers[tt.ID]
		}
	}

	return ticketTypes, nil
}

func (r *TicketTypeRepositoryImpl) FindByID(ctx context.Context, id int) (*model.TicketType, error) {
	query := `
		SELECT ` + ticketTypeColumns + `
		FROM ticket_types
		WHERE id = $1 AND deleted_at IS NULL
	`
	return r.queryOne(ctx, query, id)
}

func (r *TicketTypeRepositoryImpl) FindByTicketTypeID(ctx context.Context, ticketTypeID uuid.UUID) (*model.TicketType, error) {
	query := `
		SELECT ` + ticketTypeColumns + `
		FROM ticket_types
		WHERE ticket_type_id = $1 AND deleted_at IS NULL
	`
	return r.queryOne(ctx, query, ticketTypeID)
}

func (r *TicketTypeRepositoryImpl) queryOne(ctx context.Context, query string, arg interface{}) (*model.TicketType, error) {
	var tt model.TicketType
	err := scanTicketType(r.pool.QueryRow(ctx, query, arg), &tt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketTypeNotFound
		}
		return nil, err
	}

	tiers, err := r.loadTiers(ctx, []int{tt.ID})
	if err != nil {
		return nil, err
	}
	tt.PriceTiers = tiers[tt.ID]

	return &tt, nil
}

func (r *TicketTypeRepositoryImpl) Update(ctx context.Context, id int, values map[string]interface{}) (*model.TicketType, error) {
	allowedFields := map[string]bool{
		"name":         true,
		"base_price":   true,
		"currency":     true,
		"max_quantity": true,
		"is_active":    true,
		"sort_order":   true,
	}

	sets := []string{}
	args := []interface{}{}
	argPos := 1

	for column, value := range values {
		if ok := allowedFields[column]; !ok {
			return nil, apperrors.ErrInvalidInput
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}

	if len(sets) == 0 {
		return nil, apperrors.ErrInvalidInput
	}

	sets = append(sets, fmt.Sprintf("updated_at = $%d", argPos))
	args = append(args, time.Now().UTC())
	argPos++

	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE ticket_types
		SET %s
		WHERE id = $%d AND deleted_at IS NULL
		RETURNING `+ticketTypeColumns, strings.Join(sets, ", "), argPos)

	var tt model.TicketType
	err := scanTicketType(r.pool.QueryRow(ctx, query, args...), &tt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketTypeNotFound
		}
		return nil, err
	}

	tiers, err := r.loadTiers(ctx, []int{tt.ID})
	if err != nil {
		return nil, err
	}
	tt.PriceTiers = tiers[tt.ID]

	return &tt, nil
}

func (r *TicketTypeRepositoryImpl) ReplaceTiers(ctx context.Context, id int, tiers []model.PriceTier) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM price_tiers WHERE ticket_type_id = $1`, id); err != nil {
		return err
	}

	if err := r.insertTiers(ctx, tx, id, tiers); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *TicketTypeRepositoryImpl) Delete(ctx context.Context, id int) error {
	query := `
		UPDATE ticket_types
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`

	result, err := r.pool.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	// check if ticket type exists and not already deleted
	if result.RowsAffected() == 0 {
		return apperrors.ErrTicketTypeNotFound
	}

	return nil
}

// Reserve 以單一條件式 UPDATE 保留庫存：只在不超過 max_quantity 時遞增，
// 否則零列生效、不留部分寫入。不可改寫成先讀再寫，那會在併發搶票下超賣。
func (r *TicketTypeRepositoryImpl) Reserve(ctx context.Context, tx pgx.Tx, id int, quantity int) error {
	if quantity <= 0 {
		return apperrors.ErrInvalidQuantity
	}

	query := `
		UPDATE ticket_types
		SET current_quantity = current_quantity + $1, updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL AND is_active
		  AND (max_quantity IS NULL OR current_quantity + $1 <= max_quantity)
	`

	result, err := tx.Exec(ctx, query, quantity, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return r.classifyReserveFailure(ctx, tx, id)
	}

	return nil
}

// classifyReserveFailure 零列生效時區分：不存在 / 未開賣 / 超過上限
func (r *TicketTypeRepositoryImpl) classifyReserveFailure(ctx context.Context, tx pgx.Tx, id int) error {
	var isActive bool
	err := tx.QueryRow(ctx,
		`SELECT is_active FROM ticket_types WHERE id = $1 AND deleted_at IS NULL`, id,
	).Scan(&isActive)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.ErrTicketTypeNotFound
		}
		return err
	}

	if !isActive {
		return apperrors.ErrTicketTypeInactive
	}
	return apperrors.ErrCapacityExceeded
}

// Release 歸還庫存，下限鉗制在零。冪等性由呼叫方保證：
// 只在訂單真正轉入歸還庫存的終止狀態時呼叫一次。
func (r *TicketTypeRepositoryImpl) Release(ctx context.Context, tx pgx.Tx, id int, quantity int) error {
	if quantity <= 0 {
		return apperrors.ErrInvalidQuantity
	}

	query := `
		UPDATE ticket_types
		SET current_quantity = GREATEST(current_quantity - $1, 0), updated_at = $2
		WHERE id = $3
	`

	result, err := tx.Exec(ctx, query, quantity, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrTicketTypeNotFound
	}

	return nil
}
