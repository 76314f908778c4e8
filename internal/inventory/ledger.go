package inventory

import (
	"context"

	"go-ticket-sales-engine/internal/model"
	"go-ticket-sales-engine/internal/repository"
	apperrors "go-ticket-sales-engine/pkg/app_errors"
	"go-ticket-sales-engine/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ReservedLine 一筆已扣庫存的票種與數量
type ReservedLine struct {
	TierID   int `json:"tier_id"`
	Quantity int `json:"quantity"`
}

// ReservationToken 把已扣的數量跟進行中的購買關聯起來，
// 下游(落地)失敗時憑 token 釋放庫存。
type ReservationToken struct {
	ID      uuid.UUID      `json:"id"`
	EventID int            `json:"event_id"`
	Lines   []ReservedLine `json:"lines"`
}

// Ledger 是唯一允許改動 sold_count 的元件。
type Ledger interface {
	// Reserve 整批全有或全無：任何一個票種驗證失敗，所有票種的 sold_count 都不動。
	// 同一票種的並發 Reserve 以 row lock 序列化，檢查與扣減不可分離，杜絕超賣。
	Reserve(ctx context.Context, eventID int, requests []model.LineItem) (*ReservationToken, error)
	// Release 反向補償一筆保留，只給提交失敗的補償路徑用，不是一般取消流程。
	Release(ctx context.Context, token *ReservationToken) error
}

type LedgerImpl struct {
	pool     *pgxpool.Pool
	tierRepo repository.TierRepository
}

func NewLedger(pool *pgxpool.Pool, tierRepo repository.TierRepository) Ledger {
	return &LedgerImpl{
		pool:     pool,
		tierRepo: tierRepo,
	}
}

func (l *LedgerImpl) Reserve(ctx context.Context, eventID int, requests []model.LineItem) (*ReservationToken, error) {
	if len(requests) == 0 {
		return nil, apperrors.ErrInvalidInput
	}

	tx, err := l.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]int, 0, len(requests))
	for _, req := range requests {
		ids = append(ids, req.TierID)
	}

	// 1. 鎖定所有票種(固定順序)，之後的檢查到 commit 前不會被其他買家插隊
	tiers, err := l.tierRepo.FindByIDsWithLock(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	// 2. 先驗證整批，任何一筆失敗就整筆退出，不碰任何 sold_count
	for _, req := range requests {
		tier := tiers[req.TierID]
		if tier.EventID != eventID {
			return nil, apperrors.ErrTierNotFound
		}
		if req.Quantity < 1 {
			return nil, apperrors.ErrInvalidInput
		}
		if req.Quantity > tier.MaxPerOrder {
			return nil, &apperrors.PerOrderLimitError{
				TierID:    tier.ID,
				Requested: req.Quantity,
				Limit:     tier.MaxPerOrder,
			}
		}
		if req.Quantity > tier.Remaining() {
			return nil, &apperrors.InsufficientInventoryError{
				TierID:    tier.ID,
				Requested: req.Quantity,
				Available: tier.Remaining(),
			}
		}
	}

	// 3. 全數通過才扣庫存
	lines := make([]ReservedLine, 0, len(requests))
	for _, req := range requests {
		if err := l.tierRepo.IncrementSold(ctx, tx, req.TierID, req.Quantity); err != nil {
			return nil, err
		}
		lines = append(lines, ReservedLine{TierID: req.TierID, Quantity: req.Quantity})
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &ReservationToken{
		ID:      uuid.New(),
		EventID: eventID,
		Lines:   lines,
	}, nil
}

func (l *LedgerImpl) Release(ctx context.Context, token *ReservationToken) error {
	if token == nil || len(token.Lines) == 0 {
		return apperrors.ErrInvalidInput
	}

	tx, err := l.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, line := range token.Lines {
		if err := l.tierRepo.DecrementSold(ctx, tx, line.TierID, line.Quantity); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	logger.WithComponent("inventory").Info("reservation released",
		zap.String("reservation_id", token.ID.String()),
		zap.Int("event_id", token.EventID),
		zap.Int("lines", len(token.Lines)))

	return nil
}
