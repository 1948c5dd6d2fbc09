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

type RegistrationRepository interface {
	Create(ctx context.Context, reg *model.Registration) (*model.Registration, error)
	FindByID(ctx context.Context, id int) (*model.Registration, error)
	FindByRegistrationID(ctx context.Context, registrationID uuid.UUID) (*model.Registration, error)

	// Transaction methods
	LinkOrder(ctx context.Context, tx pgx.Tx, id int, orderID int) error
	UpdateStatus(ctx context.Context, tx pgx.Tx, id int, status model.RegistrationStatus) (*model.Registration, error)
}

type RegistrationRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewRegistrationRepository(pool *pgxpool.Pool) RegistrationRepository {
	return &RegistrationRepositoryImpl{
		pool: pool,
	}
}

const registrationColumns = `id, registration_id, event_id, user_id, order_id, status, created_at, updated_at`

func scanRegistration(row pgx.Row, reg *model.Registration) error {
	return row.Scan(
		&reg.ID,
		&reg.RegistrationID,
		&reg.EventID,
		&reg.UserID,
		&reg.OrderID,
		&reg.Status,
		&reg.CreatedAt,
		&reg.UpdatedAt,
	)
}

func (r *RegistrationRepositoryImpl) Create(ctx context.Context, reg *model.Registration) (*model.Registration, error) {
	query := `
		INSERT INTO registrations (registration_id, event_id, user_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + registrationColumns

	err := scanRegistration(r.pool.QueryRow(ctx, query,
		reg.RegistrationID, reg.EventID, reg.UserID, reg.Status,
	), reg)
	if err != nil {
		return nil, fmt.Errorf("failed to create registration: %w", err)
	}

	return reg, nil
}

func (r *RegistrationRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE id = $1
	`

	var reg model.Registration
	err := scanRegistration(r.pool.QueryRow(ctx, query, id), &reg)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrRegistrationNotFound
		}
		return nil, err
	}

	return &reg, nil
}

func (r *RegistrationRepositoryImpl) FindByRegistrationID(ctx context.Context, registrationID uuid.UUID) (*model.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE registration_id = $1
	`

	var reg model.Registration
	err := scanRegistration(r.pool.QueryRow(ctx, query, registrationID), &reg)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrRegistrationNotFound
		}
		return nil, err
	}

	return &reg, nil
}

// LinkOrder 把訂單掛上報名；只允許掛一次，已掛單的報名零列生效
func (r *RegistrationRepositoryImpl) LinkOrder(ctx context.Context, tx pgx.Tx, id int, orderID int) error {
	query := `
		UPDATE registrations
		SET order_id = $1, updated_at = $2
		WHERE id = $3 AND order_id IS NULL
	`

	result, err := tx.Exec(ctx, query, orderID, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: registration already has an order", apperrors.ErrInvalidInput)
	}

	return nil
}

func (r *RegistrationRepositoryImpl) UpdateStatus(ctx context.Context, tx pgx.Tx, id int, status model.RegistrationStatus) (*model.Registration, error) {
	query := `
		UPDATE registrations
		SET status = $1, updated_at = $2
		WHERE id = $3
		RETURNING ` + registrationColumns

	var reg model.Registration
	err := scanRegistration(tx.QueryRow(ctx, query, status, time.Now().UTC(), id), &reg)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to update registration status: %w", err)
	}

	return &reg, nil
}
