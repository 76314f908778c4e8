package repository

import (
	"context"
	"time"

	"go-ticket-sales-engine/internal/model"
	apperrors "go-ticket-sales-engine/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PromoRepository interface {
	Create(ctx context.Context, promo *model.PromoCode) (*model.PromoCode, error)
	// FindByCode 查詢已正規化(大寫)的 code，整碼比對，不做部分匹配
	FindByCode(ctx context.Context, eventID int, code string) (*model.PromoCode, error)
	FindByID(ctx context.Context, id int) (*model.PromoCode, error)

	// Transaction methods
	// IncrementUsage 只在尚未達使用上限時 +1；0 rows 代表撞上限(驗證後才被別人用完)
	IncrementUsage(ctx context.Context, tx pgx.Tx, id int) error
}

type PromoRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewPromoRepository(pool *pgxpool.Pool) PromoRepository {
	return &PromoRepositoryImpl{
		pool: pool,
	}
}

func (r *PromoRepositoryImpl) Create(ctx context.Context, promo *model.PromoCode) (*model.PromoCode, error) {
	promo.Code = model.CanonicalPromoCode(promo.Code)

	query := `
		INSERT INTO promo_codes (
			event_id, code, discount_percent, usage_cap, usage_count, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, event_id, code, discount_percent, usage_cap, usage_count,
			expires_at, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		promo.EventID, promo.Code, promo.DiscountPercent,
		promo.UsageCap, promo.UsageCount, promo.ExpiresAt,
	).Scan(
		&promo.ID,
		&promo.EventID,
		&promo.Code,
		&promo.DiscountPercent,
		&promo.UsageCap,
		&promo.UsageCount,
		&promo.ExpiresAt,
		&promo.CreatedAt,
		&promo.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return promo, nil
}

func (r *PromoRepositoryImpl) FindByCode(ctx context.Context, eventID int, code string) (*model.PromoCode, error) {
	query := `
		SELECT id, event_id, code, discount_percent, usage_cap, usage_count,
			expires_at, created_at, updated_at
		FROM promo_codes
		WHERE event_id = $1 AND code = $2
	`

	var promo model.PromoCode
	err := r.pool.QueryRow(ctx, query, eventID, code).Scan(
		&promo.ID,
		&promo.EventID,
		&promo.Code,
		&promo.DiscountPercent,
		&promo.UsageCap,
		&promo.UsageCount,
		&promo.ExpiresAt,
		&promo.CreatedAt,
		&promo.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrPromoNotFound
		}
		return nil, err
	}

	return &promo, nil
}

func (r *PromoRepositoryImpl) FindByID(ctx context.Context, id int) (*model.PromoCode, error) {
	query := `
		SELECT id, event_id, code, discount_percent, usage_cap, usage_count,
			expires_at, created_at, updated_at
		FROM promo_codes
		WHERE id = $1
	`

	var promo model.PromoCode
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&promo.ID,
		&promo.EventID,
		&promo.Code,
		&promo.DiscountPercent,
		&promo.UsageCap,
		&promo.UsageCount,
		&promo.ExpiresAt,
		&promo.CreatedAt,
		&promo.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrPromoNotFound
		}
		return nil, err
	}

	return &promo, nil
}

func (r *PromoRepositoryImpl) IncrementUsage(ctx context.Context, tx pgx.Tx, id int) error {
	query := `
		UPDATE promo_codes
		SET usage_count = usage_count + 1, updated_at = $1
		WHERE id = $2 AND (usage_cap IS NULL OR usage_count < usage_cap)
	`

	result, err := tx.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrPromoExhausted
	}

	return nil
}
