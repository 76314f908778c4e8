package service

import (
	"context"
	"errors"

	"go-ticket-sales-engine/internal/cache"
	"go-ticket-sales-engine/internal/model"
	"go-ticket-sales-engine/internal/repository"
	apperrors "go-ticket-sales-engine/pkg/app_errors"
	"go-ticket-sales-engine/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type TierService interface {
	Create(ctx context.Context, req model.CreateTierRequest) (*model.TicketTier, error)
	ListByEvent(ctx context.Context, eventID int) ([]*model.TicketTier, error)
	GetByID(ctx context.Context, id int) (*model.TicketTier, error)
	// Availability 先讀快取，沒中再回源 DB 並回填
	Availability(ctx context.Context, tierID int) (cache.TierAvailability, error)
	// WarmUpEvent 把整個活動的票種預熱進快取
	WarmUpEvent(ctx context.Context, eventID int) error
}

type TierServiceImpl struct {
	repo       repository.TierRepository
	availCache cache.AvailabilityCache
}

func NewTierService(repo repository.TierRepository, availCache cache.AvailabilityCache) TierService {
	return &TierServiceImpl{
		repo:       repo,
		availCache: availCache,
	}
}

func (s *TierServiceImpl) Create(ctx context.Context, req model.CreateTierRequest) (*model.TicketTier, error) {
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		return nil, apperrors.ErrInvalidInput
	}
	if req.Capacity < 0 || req.MaxPerOrder < 1 {
		return nil, apperrors.ErrInvalidInput
	}

	perks := req.Perks
	if perks == nil {
		perks = []string{}
	}

	tier := &model.TicketTier{
		EventID:     req.EventID,
		Name:        req.Name,
		Price:       price,
		Capacity:    req.Capacity,
		SoldCount:   0, // sold_count 不開放從管理面設定，只有 InventoryLedger 能動
		MaxPerOrder: req.MaxPerOrder,
		Perks:       perks,
		SortOrder:   req.SortOrder,
	}

	tier, err = s.repo.Create(ctx, tier)
	if err != nil {
		return nil, err
	}

	if err := s.availCache.WarmUp(ctx, tier); err != nil {
		logger.WithComponent("tier").Warn("failed to warm up availability cache",
			zap.Int("tier_id", tier.ID), zap.Error(err))
	}

	return tier, nil
}

func (s *TierServiceImpl) ListByEvent(ctx context.Context, eventID int) ([]*model.TicketTier, error) {
	return s.repo.ListByEvent(ctx, eventID)
}

func (s *TierServiceImpl) GetByID(ctx context.Context, id int) (*model.TicketTier, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *TierServiceImpl) Availability(ctx context.Context, tierID int) (cache.TierAvailability, error) {
	avail, err := s.availCache.Get(ctx, tierID)
	if err == nil {
		return avail, nil
	}
	if !errors.Is(err, apperrors.ErrTierNotFound) {
		logger.WithComponent("tier").Warn("availability cache read failed, falling back to db",
			zap.Int("tier_id", tierID), zap.Error(err))
	}

	tier, err := s.repo.FindByID(ctx, tierID)
	if err != nil {
		return cache.TierAvailability{}, err
	}

	if err := s.availCache.WarmUp(ctx, tier); err != nil {
		logger.WithComponent("tier").Warn("failed to warm up availability cache",
			zap.Int("tier_id", tier.ID), zap.Error(err))
	}

	return cache.TierAvailability{
		Remaining: tier.Remaining(),
		Price:     tier.Price.StringFixed(2),
	}, nil
}

func (s *TierServiceImpl) WarmUpEvent(ctx context.Context, eventID int) error {
	tiers, err := s.repo.ListByEvent(ctx, eventID)
	if err != nil {
		return err
	}

	for _, tier := range tiers {
		if err := s.availCache.WarmUp(ctx, tier); err != nil {
			return err
		}
	}

	return nil
}
