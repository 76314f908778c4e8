package service

import (
	"context"
	"errors"
	"strings"

	"go-ticket-sales-engine/internal/model"
	"go-ticket-sales-engine/internal/repository"
	apperrors "go-ticket-sales-engine/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WaitlistService interface {
	// Join 冪等：同一人(userID，沒有就用 email)重複加入回傳既有條目，位置不變
	Join(ctx context.Context, req model.JoinWaitlistRequest) (*model.WaitlistEntry, error)
	// Leave 離開候補，其他人的 position 不重排
	Leave(ctx context.Context, entryID int) error
	GetEntry(ctx context.Context, entryID int) (*model.WaitlistEntry, error)
	ListByScope(ctx context.Context, eventID int, tierID *int) ([]*model.WaitlistEntry, error)
}

type WaitlistServiceImpl struct {
	pool *pgxpool.Pool
	repo repository.WaitlistRepository
}

func NewWaitlistService(pool *pgxpool.Pool, repo repository.WaitlistRepository) WaitlistService {
	return &WaitlistServiceImpl{
		pool: pool,
		repo: repo,
	}
}

func (s *WaitlistServiceImpl) Join(ctx context.Context, req model.JoinWaitlistRequest) (*model.WaitlistEntry, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if req.EventID <= 0 || name == "" || email == "" {
		return nil, apperrors.ErrInvalidInput
	}

	// 無鎖快路徑：已經在名單上就直接回傳
	existing, err := s.repo.FindActive(ctx, req.EventID, req.TierID, req.UserID, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrWaitlistEntryNotFound) {
		return nil, err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// 同一範圍的並發加入用 advisory lock 序列化，位置才不會重複或跳號；
	// 不同 (event, tier) 範圍互不阻塞
	if err := s.repo.LockScope(ctx, tx, req.EventID, req.TierID); err != nil {
		return nil, err
	}

	// 拿到鎖後重查，擋掉同一人同時送出兩次表單的情況
	existing, err = s.repo.FindActiveTx(ctx, tx, req.EventID, req.TierID, req.UserID, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrWaitlistEntryNotFound) {
		return nil, err
	}

	max, err := s.repo.MaxPosition(ctx, tx, req.EventID, req.TierID)
	if err != nil {
		return nil, err
	}

	entry := &model.WaitlistEntry{
		EventID:  req.EventID,
		TierID:   req.TierID,
		Name:     name,
		Email:    email,
		UserID:   req.UserID,
		Position: max + 1,
	}

	entry, err = s.repo.Create(ctx, tx, entry)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return entry, nil
}

func (s *WaitlistServiceImpl) Leave(ctx context.Context, entryID int) error {
	return s.repo.Delete(ctx, entryID)
}

func (s *WaitlistServiceImpl) GetEntry(ctx context.Context, entryID int) (*model.WaitlistEntry, error) {
	return s.repo.FindByID(ctx, entryID)
}

func (s *WaitlistServiceImpl) ListByScope(ctx context.Context, eventID int, tierID *int) ([]*model.WaitlistEntry, error) {
	return s.repo.ListByScope(ctx, eventID, tierID)
}
