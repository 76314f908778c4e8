package service

import (
	"context"
	"strings"
	"time"

	"go-ticket-sales-engine/internal/cache"
	"go-ticket-sales-engine/internal/inventory"
	"go-ticket-sales-engine/internal/model"
	"go-ticket-sales-engine/internal/pricing"
	"go-ticket-sales-engine/internal/queue"
	"go-ticket-sales-engine/internal/repository"
	apperrors "go-ticket-sales-engine/pkg/app_errors"
	"go-ticket-sales-engine/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type PurchaseService interface {
	// Quote 即時報價，不動任何庫存或計數器
	Quote(ctx context.Context, req model.QuoteRequest) (*model.PriceQuote, error)
	// Purchase 全有或全無的購買交易：報價 → 保留庫存 → 提交
	Purchase(ctx context.Context, req model.PurchaseRequest) (*model.Ticket, error)
	GetTicket(ctx context.Context, id int) (*model.Ticket, error)
	ListTickets(ctx context.Context, eventID int) ([]*model.Ticket, error)
	// CancelTicket 取消票券並把數量還回票種，釋出事件觸發候補通知
	CancelTicket(ctx context.Context, id int) (*model.Ticket, error)
}

type PurchaseServiceImpl struct {
	pool         *pgxpool.Pool
	tierRepo     repository.TierRepository
	promoRepo    repository.PromoRepository
	ticketRepo   repository.TicketRepository
	paymentRepo  repository.PaymentRepository
	ledger       inventory.Ledger
	validator    pricing.PromoValidator
	calculator   *pricing.Calculator
	availCache   cache.AvailabilityCache
	restockQueue queue.RestockQueue
}

func NewPurchaseService(
	pool *pgxpool.Pool,
	tierRepo repository.TierRepository,
	promoRepo repository.PromoRepository,
	ticketRepo repository.TicketRepository,
	paymentRepo repository.PaymentRepository,
	ledger inventory.Ledger,
	validator pricing.PromoValidator,
	calculator *pricing.Calculator,
	availCache cache.AvailabilityCache,
	restockQueue queue.RestockQueue,
) PurchaseService {
	return &PurchaseServiceImpl{
		pool:         pool,
		tierRepo:     tierRepo,
		promoRepo:    promoRepo,
		ticketRepo:   ticketRepo,
		paymentRepo:  paymentRepo,
		ledger:       ledger,
		validator:    validator,
		calculator:   calculator,
		availCache:   availCache,
		restockQueue: restockQueue,
	}
}

func (s *PurchaseServiceImpl) Quote(ctx context.Context, req model.QuoteRequest) (*model.PriceQuote, error) {
	cart, tiers, promo, err := s.prepare(ctx, req.EventID, req.Items, req.PromoCode)
	if err != nil {
		return nil, err
	}

	return s.calculator.Quote(cart, tiers, promo)
}

func (s *PurchaseServiceImpl) Purchase(ctx context.Context, req model.PurchaseRequest) (*model.Ticket, error) {
	if strings.TrimSpace(req.Buyer.Name) == "" || strings.TrimSpace(req.Buyer.Email) == "" {
		return nil, apperrors.ErrInvalidInput
	}

	// 1. Quoting：折扣碼無效就直接失敗，不能默默忽略
	cart, tiers, promo, err := s.prepare(ctx, req.EventID, req.Items, req.PromoCode)
	if err != nil {
		return nil, err
	}

	quote, err := s.calculator.Quote(cart, tiers, promo)
	if err != nil {
		return nil, err
	}

	// 2. Reserving：失敗則什麼都沒發生
	token, err := s.ledger.Reserve(ctx, req.EventID, cart.Items)
	if err != nil {
		return nil, err
	}

	// 3. Committing：票券 + 交易紀錄 + 折扣碼計數，一個交易落地
	ticket, err := s.commit(ctx, req, cart, tiers, promo, quote)
	if err != nil {
		// 落地失敗必須補償釋放，用 context.Background() 確保一定執行
		if releaseErr := s.ledger.Release(context.Background(), token); releaseErr != nil {
			logger.WithComponent("purchase").Error("failed to release reservation after commit failure",
				zap.String("reservation_id", token.ID.String()), zap.Error(releaseErr))
		} else {
			s.publishRestocks(context.Background(), req.EventID, token.Lines)
		}
		return nil, err
	}

	// 4. Completed：快取只是顯示用，同步失敗不影響結果
	for _, line := range token.Lines {
		if err := s.availCache.AdjustRemaining(ctx, line.TierID, -line.Quantity); err != nil {
			logger.WithComponent("purchase").Warn("failed to adjust availability cache",
				zap.Int("tier_id", line.TierID), zap.Error(err))
		}
	}

	return ticket, nil
}

// prepare 解析購物車、載入票種並驗證折扣碼
func (s *PurchaseServiceImpl) prepare(ctx context.Context, eventID int, items []model.LineItem, promoCode string) (*model.Cart, map[int]*model.TicketTier, *model.PromoCode, error) {
	cart, err := model.NewCart(eventID, items)
	if err != nil {
		return nil, nil, nil, err
	}

	tiers, err := s.tierRepo.FindByIDs(ctx, cart.TierIDs())
	if err != nil {
		return nil, nil, nil, err
	}
	for _, tier := range tiers {
		if tier.EventID != eventID {
			return nil, nil, nil, apperrors.ErrTierNotFound
		}
	}

	var promo *model.PromoCode
	if promoCode != "" {
		promo, err = s.validator.Resolve(ctx, eventID, promoCode)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	return cart, tiers, promo, nil
}

func (s *PurchaseServiceImpl) commit(
	ctx context.Context,
	req model.PurchaseRequest,
	cart *model.Cart,
	tiers map[int]*model.TicketTier,
	promo *model.PromoCode,
	quote *model.PriceQuote,
) (*model.Ticket, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	paymentMethod := model.PaymentMethodPayLater
	paymentStatus := model.PaymentStatusPending
	if quote.IsFree() {
		paymentMethod = model.PaymentMethodFree
		paymentStatus = model.PaymentStatusCompleted
	}

	// 單價在這裡快照，之後票種改價不影響這張票
	lineItems := make([]model.TicketLineItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		tier := tiers[item.TierID]
		lineItems = append(lineItems, model.TicketLineItem{
			TierID:    tier.ID,
			TierName:  tier.Name,
			UnitPrice: tier.Price,
			Quantity:  item.Quantity,
		})
	}

	ticket := &model.Ticket{
		TicketID:      uuid.New(),
		EventID:       req.EventID,
		BuyerName:     strings.TrimSpace(req.Buyer.Name),
		BuyerEmail:    strings.TrimSpace(req.Buyer.Email),
		Subtotal:      quote.Subtotal,
		GroupDiscount: quote.GroupDiscount,
		PromoDiscount: quote.PromoDiscount,
		ServiceFee:    quote.ServiceFee,
		TotalPrice:    quote.Total,
		PaymentStatus: paymentStatus,
		PaymentMethod: paymentMethod,
		Items:         lineItems,
	}
	if promo != nil {
		ticket.PromoCode = &promo.Code
	}

	ticket, err = s.ticketRepo.Create(ctx, tx, ticket)
	if err != nil {
		return nil, err
	}

	_, err = s.paymentRepo.Create(ctx, tx, &model.PaymentTransaction{
		TicketID:      ticket.ID,
		Subtotal:      quote.Subtotal,
		GroupDiscount: quote.GroupDiscount,
		PromoDiscount: quote.PromoDiscount,
		ServiceFee:    quote.ServiceFee,
		Total:         quote.Total,
		Method:        paymentMethod,
		Status:        paymentStatus,
	})
	if err != nil {
		return nil, err
	}

	// usage_count 只在這裡 +1，一張成功提交的票恰好一次；
	// 驗證後被別人用完上限的話在這裡撞 ErrPromoExhausted，整筆回滾
	if promo != nil {
		if err := s.promoRepo.IncrementUsage(ctx, tx, promo.ID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return ticket, nil
}

func (s *PurchaseServiceImpl) GetTicket(ctx context.Context, id int) (*model.Ticket, error) {
	return s.ticketRepo.FindByID(ctx, id)
}

func (s *PurchaseServiceImpl) ListTickets(ctx context.Context, eventID int) ([]*model.Ticket, error) {
	return s.ticketRepo.ListByEvent(ctx, eventID)
}

func (s *PurchaseServiceImpl) CancelTicket(ctx context.Context, id int) (*model.Ticket, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ticket, err := s.ticketRepo.Cancel(ctx, tx, id, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	// 把數量還回票種，跟狀態翻轉同一個交易
	for _, item := range ticket.Items {
		if err := s.tierRepo.DecrementSold(ctx, tx, item.TierID, item.Quantity); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	lines := make([]inventory.ReservedLine, 0, len(ticket.Items))
	for _, item := range ticket.Items {
		lines = append(lines, inventory.ReservedLine{TierID: item.TierID, Quantity: item.Quantity})
		if err := s.availCache.AdjustRemaining(ctx, item.TierID, item.Quantity); err != nil {
			logger.WithComponent("purchase").Warn("failed to adjust availability cache",
				zap.Int("tier_id", item.TierID), zap.Error(err))
		}
	}
	s.publishRestocks(ctx, ticket.EventID, lines)

	return ticket, nil
}

// publishRestocks 釋出庫存事件是候補通知的觸發點，發送失敗只記 log，不影響主流程
func (s *PurchaseServiceImpl) publishRestocks(ctx context.Context, eventID int, lines []inventory.ReservedLine) {
	for _, line := range lines {
		err := s.restockQueue.PublishRestock(ctx, &queue.RestockEvent{
			EventID:    eventID,
			TierID:     line.TierID,
			Freed:      line.Quantity,
			OccurredAt: time.Now().UTC(),
		})
		if err != nil {
			logger.WithComponent("purchase").Error("failed to publish restock event",
				zap.Int("tier_id", line.TierID), zap.Error(err))
		}
	}
}
