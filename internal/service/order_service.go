package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hackathonweekly/ticketing/config"
	"github.com/hackathonweekly/ticketing/internal/cache"
	"github.com/hackathonweekly/ticketing/internal/metrics"
	"github.com/hackathonweekly/ticketing/internal/model"
	"github.com/hackathonweekly/ticketing/internal/policy"
	"github.com/hackathonweekly/ticketing/internal/pricing"
	"github.com/hackathonweekly/ticketing/internal/repository"
	apperrors "github.com/hackathonweekly/ticketing/pkg/app_errors"
	"github.com/hackathonweekly/ticketing/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type OrderService interface {
	// 創建訂單：定價、保留庫存、寫入 PENDING 訂單，三者同一交易
	CreateOrder(ctx context.Context, req model.CreateOrderRequest) (*model.Order, error)
	OrderList(ctx context.Context) ([]*model.Order, error)
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Order, error)
	// 金流回調：PENDING → PAID
	ConfirmPayment(ctx context.Context, orderID uuid.UUID) (*model.Order, error)
	// 金流回調：付款失敗，PENDING → CANCELLED 並歸還庫存
	FailPayment(ctx context.Context, orderID uuid.UUID) (*model.Order, error)
	// 主動取消：PENDING → CANCELLED 並歸還庫存，連動報名狀態
	CancelOrder(ctx context.Context, orderID uuid.UUID) (*model.Order, error)
	// 發起退款：過退款政策後 PAID → REFUND_PENDING，庫存不動（已成交）
	InitiateRefund(ctx context.Context, orderID uuid.UUID, requested *decimal.Decimal) (*model.Order, error)
	// 金流回調：退款到帳，REFUND_PENDING → REFUNDED
	ConfirmRefund(ctx context.Context, orderID uuid.UUID) (*model.Order, error)
	// Sweeper 專用：付款窗口已過的訂單 PENDING → EXPIRED 並歸還庫存
	ExpireOrder(ctx context.Context, id int, now time.Time) error
}

type OrderServiceImpl struct {
	pool             *pgxpool.Pool
	repository       repository.OrderRepository
	ticketTypeRepo   repository.TicketTypeRepository
	registrationRepo repository.RegistrationRepository
	availability     cache.AvailabilityCache
	orderConfig      config.OrderConfig
	log              *zap.Logger
}

func NewOrderService(
	pool *pgxpool.Pool,
	orderRepository repository.OrderRepository,
	ticketTypeRepository repository.TicketTypeRepository,
	registrationRepository repository.RegistrationRepository,
	availability cache.AvailabilityCache,
	orderConfig config.OrderConfig,
) OrderService {
	return &OrderServiceImpl{
		pool:             pool,
		repository:       orderRepository,
		ticketTypeRepo:   ticketTypeRepository,
		registrationRepo: registrationRepository,
		availability:     availability,
		orderConfig:      orderConfig,
		log:              logger.WithComponent("order_service"),
	}
}

func (s *OrderServiceImpl) CreateOrder(ctx context.Context, req model.CreateOrderRequest) (*model.Order, error) {
	if req.Quantity <= 0 {
		return nil, apperrors.ErrInvalidQuantity
	}

	registration, err := s.registrationRepo.FindByRegistrationID(ctx, req.RegistrationID)
	if err != nil {
		return nil, err
	}
	if registration.HasOrder() {
		return nil, fmt.Errorf("%w: registration already has an order", apperrors.ErrInvalidInput)
	}
	if registration.Status == model.RegistrationStatusCancelled {
		return nil, fmt.Errorf("%w: registration is cancelled", apperrors.ErrInvalidInput)
	}

	ticketType, err := s.ticketTypeRepo.FindByTicketTypeID(ctx, req.TicketTypeID)
	if err != nil {
		return nil, err
	}

	// 定價先於保留庫存：定價失敗就什麼都不動
	quote, err := pricing.Resolve(ticketType.BasePrice, ticketType.Currency, ticketType.PriceTiers, req.Quantity)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order := &model.Order{
		OrderID:        uuid.New(),
		RegistrationID: registration.ID,
		TicketTypeID:   ticketType.ID,
		Quantity:       req.Quantity,
		UnitPrice:      quote.UnitPrice,
		TotalAmount:    quote.TotalAmount,
		Currency:       quote.Currency,
		Status:         model.OrderStatusPending,
		ExpiresAt:      now.Add(time.Duration(s.orderConfig.ExpireMinutes) * time.Minute),
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// 保留庫存與訂單落庫同一交易：交易中途崩潰不會留下沒有訂單的保留量
	if err := s.ticketTypeRepo.Reserve(ctx, tx, ticketType.ID, req.Quantity); err != nil {
		if errors.Is(err, apperrors.ErrCapacityExceeded) {
			metrics.CapacityRejected()
		}
		return nil, err
	}

	created, err := s.repository.Create(ctx, tx, order)
	if err != nil {
		return nil, err
	}

	if err := s.registrationRepo.LinkOrder(ctx, tx, registration.ID, created.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	metrics.OrderCreated()
	s.refreshAvailability(ticketType.ID)

	return created, nil
}

func (s *OrderServiceImpl) OrderList(ctx context.Context) ([]*model.Order, error) {
	return s.repository.List(ctx)
}

func (s *OrderServiceImpl) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	return s.repository.FindByOrderID(ctx, orderID)
}

func (s *OrderServiceImpl) ConfirmPayment(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.repository.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, order.ID, model.OrderStatusPending, model.OrderStatusPaid)
}

func (s *OrderServiceImpl) FailPayment(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.repository.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.closePending(ctx, order, model.OrderStatusCancelled)
}

func (s *OrderServiceImpl) CancelOrder(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.repository.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.closePending(ctx, order, model.OrderStatusCancelled)
}

func (s *OrderServiceImpl) InitiateRefund(ctx context.Context, orderID uuid.UUID, requested *decimal.Decimal) (*model.Order, error) {
	order, err := s.repository.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// 退款金額唯一出口：非 PAID、零總額、非全額一律在這裡擋下
	if _, err := policy.ResolveRefundAmount(order.Status, order.TotalAmount, requested); err != nil {
		return nil, err
	}

	return s.transition(ctx, order.ID, model.OrderStatusPaid, model.OrderStatusRefundPending)
}

func (s *OrderServiceImpl) ConfirmRefund(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.repository.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, order.ID, model.OrderStatusRefundPending, model.OrderStatusRefunded)
}

func (s *OrderServiceImpl) ExpireOrder(ctx context.Context, id int, now time.Time) error {
	order, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return err
	}

	// 窗口未過或狀態已被付款回調搶先：守衛拒絕，不靜默跳過
	if !order.IsExpired(now) {
		return apperrors.ErrOrderStatusConflict
	}

	_, err = s.closePending(ctx, order, model.OrderStatusExpired)
	return err
}

// transition 不涉及庫存的守衛轉換（PAID、REFUND_PENDING、REFUNDED）
func (s *OrderServiceImpl) transition(ctx context.Context, id int, from, to model.OrderStatus) (*model.Order, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	updated, err := s.repository.TransitionStatus(ctx, tx, id, from, to)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	metrics.OrderTransitioned(string(from), string(to))
	return updated, nil
}

// closePending 待付款訂單收尾：狀態轉換、歸還庫存、連動報名取消，同一交易提交。
// 歸還只發生在守衛轉換成功之後，所以重複呼叫不會重複歸還。
func (s *OrderServiceImpl) closePending(ctx context.Context, order *model.Order, to model.OrderStatus) (*model.Order, error) {
	if !to.ReleasesCapacity() {
		return nil, apperrors.ErrOrderStatusConflict
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	updated, err := s.repository.TransitionStatus(ctx, tx, order.ID, model.OrderStatusPending, to)
	if err != nil {
		return nil, err
	}

	if err := s.ticketTypeRepo.Release(ctx, tx, order.TicketTypeID, order.Quantity); err != nil {
		return nil, err
	}

	if _, err := s.registrationRepo.UpdateStatus(ctx, tx, order.RegistrationID, model.RegistrationStatusCancelled); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	metrics.OrderTransitioned(string(model.OrderStatusPending), string(to))
	s.refreshAvailability(order.TicketTypeID)

	return updated, nil
}

// refreshAvailability 交易提交後刷新讀側快照。best-effort：快照失敗不影響訂單結果。
func (s *OrderServiceImpl) refreshAvailability(ticketTypeID int) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ticketType, err := s.ticketTypeRepo.FindByID(ctx, ticketTypeID)
	if err != nil {
		s.log.Warn("failed to reload ticket type for availability snapshot",
			zap.Int("ticket_type_id", ticketTypeID), zap.Error(err))
		return
	}

	snapshot := cache.AvailabilitySnapshot{
		Remaining: ticketType.Remaining(),
		Unlimited: ticketType.Unlimited(),
	}
	if err := s.availability.Refresh(ctx, ticketTypeID, snapshot); err != nil {
		s.log.Warn("failed to refresh availability snapshot",
			zap.Int("ticket_type_id", ticketTypeID), zap.Error(err))
	}
}
