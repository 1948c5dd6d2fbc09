package service

import (
	"context"
	"errors"

	"github.com/hackathonweekly/ticketing/internal/cache"
	"github.com/hackathonweekly/ticketing/internal/model"
	"github.com/hackathonweekly/ticketing/internal/repository"
	"github.com/hackathonweekly/ticketing/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TicketTypeService interface {
	List(ctx context.Context) ([]*model.TicketTypeResponse, error)
	GetByTicketTypeID(ctx context.Context, ticketTypeID uuid.UUID) (*model.TicketType, error)
	Create(ctx context.Context, ticketType *model.TicketType) (*model.TicketType, error)
	UpdateByTicketTypeID(ctx context.Context, ticketTypeID uuid.UUID, params model.UpdateTicketTypeParams, tiers []model.PriceTier) (*model.TicketType, error)
	DeleteByTicketTypeID(ctx context.Context, ticketTypeID uuid.UUID) error
}

type TicketTypeServiceImpl struct {
	repo         repository.TicketTypeRepository
	availability cache.AvailabilityCache
	log          *zap.Logger
}

func NewTicketTypeService(repo repository.TicketTypeRepository, availability cache.AvailabilityCache) TicketTypeService {
	return &TicketTypeServiceImpl{
		repo:         repo,
		availability: availability,
		log:          logger.WithComponent("ticket_type_service"),
	}
}

// List 列出票種並附上剩餘可售量。剩餘量優先讀 Redis 快照，
// 未命中就用資料庫那一行回填；快照永遠不是權威數據。
func (s *TicketTypeServiceImpl) List(ctx context.Context) ([]*model.TicketTypeResponse, error) {
	ticketTypes, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]*model.TicketTypeResponse, 0, len(ticketTypes))
	for _, tt := range ticketTypes {
		responses = append(responses, &model.TicketTypeResponse{
			TicketTypeID: tt.TicketTypeID,
			EventID:      tt.EventID,
			Name:         tt.Name,
			BasePrice:    tt.BasePrice,
			Currency:     tt.Currency,
			MaxQuantity:  tt.MaxQuantity,
			Remaining:    s.remaining(ctx, tt),
			IsActive:     tt.IsActive,
			SortOrder:    tt.SortOrder,
			PriceTiers:   tt.PriceTiers,
		})
	}

	return responses, nil
}

func (s *TicketTypeServiceImpl) remaining(ctx context.Context, tt *model.TicketType) int {
	snapshot, err := s.availability.Get(ctx, tt.ID)
	if err == nil {
		if snapshot.Unlimited {
			return -1
		}
		return snapshot.Remaining
	}

	if !errors.Is(err, cache.ErrAvailabilityMiss) {
		s.log.Warn("failed to read availability snapshot", zap.Int("ticket_type_id", tt.ID), zap.Error(err))
	}

	// 回源並回填快照
	remaining := tt.Remaining()
	refresh := cache.AvailabilitySnapshot{Remaining: remaining, Unlimited: tt.Unlimited()}
	if err := s.availability.Refresh(ctx, tt.ID, refresh); err != nil {
		s.log.Warn("failed to refresh availability snapshot", zap.Int("ticket_type_id", tt.ID), zap.Error(err))
	}

	return remaining
}

func (s *TicketTypeServiceImpl) GetByTicketTypeID(ctx context.Context, ticketTypeID uuid.UUID) (*model.TicketType, error) {
	return s.repo.FindByTicketTypeID(ctx, ticketTypeID)
}

func (s *TicketTypeServiceImpl) Create(ctx context.Context, ticketType *model.TicketType) (*model.TicketType, error) {
	ticketType.TicketTypeID = uuid.New()
	if ticketType.Currency == "" {
		ticketType.Currency = model.DefaultCurrency
	}
	return s.repo.Create(ctx, ticketType)
}

func (s *TicketTypeServiceImpl) UpdateByTicketTypeID(ctx context.Context, ticketTypeID uuid.UUID, params model.UpdateTicketTypeParams, tiers []model.PriceTier) (*model.TicketType, error) {
	ticketType, err := s.repo.FindByTicketTypeID(ctx, ticketTypeID)
	if err != nil {
		return nil, err
	}

	values := map[string]interface{}{}
	if params.Name != nil {
		values["name"] = *params.Name
	}
	if params.BasePrice != nil {
		values["base_price"] = *params.BasePrice
	}
	if params.Currency != nil {
		values["currency"] = *params.Currency
	}
	if params.MaxQuantity != nil {
		values["max_quantity"] = *params.MaxQuantity
	}
	if params.IsActive != nil {
		values["is_active"] = *params.IsActive
	}
	if params.SortOrder != nil {
		values["sort_order"] = *params.SortOrder
	}

	if len(values) > 0 {
		if _, err := s.repo.Update(ctx, ticketType.ID, values); err != nil {
			return nil, err
		}
	}

	if tiers != nil {
		if err := s.repo.ReplaceTiers(ctx, ticketType.ID, tiers); err != nil {
			return nil, err
		}
	}

	if err := s.availability.Invalidate(ctx, ticketType.ID); err != nil {
		s.log.Warn("failed to invalidate availability snapshot", zap.Int("ticket_type_id", ticketType.ID), zap.Error(err))
	}

	return s.repo.FindByID(ctx, ticketType.ID)
}

func (s *TicketTypeServiceImpl) DeleteByTicketTypeID(ctx context.Context, ticketTypeID uuid.UUID) error {
	ticketType, err := s.repo.FindByTicketTypeID(ctx, ticketTypeID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, ticketType.ID); err != nil {
		return err
	}

	if err := s.availability.Invalidate(ctx, ticketType.ID); err != nil {
		s.log.Warn("failed to invalidate availability snapshot", zap.Int("ticket_type_id", ticketType.ID), zap.Error(err))
	}

	return nil
}
