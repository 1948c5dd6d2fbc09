package service

import (
	"context"
	"fmt"

	"github.com/hackathonweekly/ticketing/internal/model"
	"github.com/hackathonweekly/ticketing/internal/policy"
	"github.com/hackathonweekly/ticketing/internal/repository"
	apperrors "github.com/hackathonweekly/ticketing/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RegistrationService interface {
	Create(ctx context.Context, req model.CreateRegistrationRequest) (*model.Registration, error)
	GetByRegistrationID(ctx context.Context, registrationID uuid.UUID) (*model.Registration, error)
	// Cancel 主辦方取消報名。掛著已付款或退款中訂單的報名會被擋下，
	// 必須先走完退款；這裡只擋，不代發退款。
	Cancel(ctx context.Context, registrationID uuid.UUID) (*model.Registration, error)
}

type RegistrationServiceImpl struct {
	pool         *pgxpool.Pool
	repository   repository.RegistrationRepository
	orderRepo    repository.OrderRepository
	orderService OrderService
}

func NewRegistrationService(
	pool *pgxpool.Pool,
	registrationRepository repository.RegistrationRepository,
	orderRepository repository.OrderRepository,
	orderService OrderService,
) RegistrationService {
	return &RegistrationServiceImpl{
		pool:         pool,
		repository:   registrationRepository,
		orderRepo:    orderRepository,
		orderService: orderService,
	}
}

func (s *RegistrationServiceImpl) Create(ctx context.Context, req model.CreateRegistrationRequest) (*model.Registration, error) {
	registration := &model.Registration{
		RegistrationID: uuid.New(),
		EventID:        req.EventID,
		UserID:         req.UserID,
		Status:         model.RegistrationStatusPending,
	}
	return s.repository.Create(ctx, registration)
}

func (s *RegistrationServiceImpl) GetByRegistrationID(ctx context.Context, registrationID uuid.UUID) (*model.Registration, error) {
	return s.repository.FindByRegistrationID(ctx, registrationID)
}

func (s *RegistrationServiceImpl) Cancel(ctx context.Context, registrationID uuid.UUID) (*model.Registration, error) {
	registration, err := s.repository.FindByRegistrationID(ctx, registrationID)
	if err != nil {
		return nil, err
	}

	if registration.Status == model.RegistrationStatusCancelled {
		return nil, fmt.Errorf("%w: registration already cancelled", apperrors.ErrInvalidInput)
	}

	// 免費活動沒有訂單，直接取消
	if !registration.HasOrder() {
		return s.cancelWithoutOrder(ctx, registration.ID)
	}

	order, err := s.orderRepo.FindByID(ctx, *registration.OrderID)
	if err != nil {
		return nil, err
	}

	if policy.RequiresRefundBeforeCancellation(order.Status) {
		return nil, apperrors.ErrRefundRequired
	}

	// 待付款訂單：取消訂單會一併歸還庫存並取消報名
	if order.Status == model.OrderStatusPending {
		if _, err := s.orderService.CancelOrder(ctx, order.OrderID); err != nil {
			return nil, err
		}
		return s.repository.FindByID(ctx, registration.ID)
	}

	// 已退款或已終止的訂單：取消無條件放行，無金流動作
	return s.cancelWithoutOrder(ctx, registration.ID)
}

func (s *RegistrationServiceImpl) cancelWithoutOrder(ctx context.Context, id int) (*model.Registration, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	updated, err := s.repository.UpdateStatus(ctx, tx, id, model.RegistrationStatusCancelled)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return updated, nil
}
