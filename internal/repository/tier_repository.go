package repository

import (
	"context"
	"sort"
	"time"

	"go-ticket-sales-engine/internal/model"
	apperrors "go-ticket-sales-engine/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TierRepository interface {
	Create(ctx context.Context, tier *model.TicketTier) (*model.TicketTier, error)
	ListByEvent(ctx context.Context, eventID int) ([]*model.TicketTier, error)
	FindByID(ctx context.Context, id int) (*model.TicketTier, error)
	FindByIDs(ctx context.Context, ids []int) (map[int]*model.TicketTier, error)

	// Transaction methods
	FindByIDsWithLock(ctx context.Context, tx pgx.Tx, ids []int) (map[int]*model.TicketTier, error)
	IncrementSold(ctx context.Context, tx pgx.Tx, id int, quantity int) error
	DecrementSold(ctx context.Context, tx pgx.Tx, id int, quantity int) error
}

type TierRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewTierRepository(pool *pgxpool.Pool) TierRepository {
	return &TierRepositoryImpl{
		pool: pool,
	}
}

func (r *TierRepositoryImpl) Create(ctx context.Context, tier *model.TicketTier) (*model.TicketTier, error) {
	query := `
		INSERT INTO ticket_tiers (
			event_id, name, price, capacity, sold_count, max_per_order, perks, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, event_id, name, price, capacity, sold_count,
			max_per_order, perks, sort_order, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		tier.EventID, tier.Name, tier.Price, tier.Capacity,
		tier.SoldCount, tier.MaxPerOrder, tier.Perks, tier.SortOrder,
	).Scan(
		&tier.ID,
		&tier.EventID,
		&tier.Name,
		&tier.Price,
		&tier.Capacity,
		&tier.SoldCount,
		&tier.MaxPerOrder,
		&tier.Perks,
		&tier.SortOrder,
		&tier.CreatedAt,
		&tier.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return tier, nil
}

func (r *TierRepositoryImpl) ListByEvent(ctx context.Context, eventID int) ([]*model.TicketTier, error) {
	query := `
		SELECT id, event_id, name, price, capacity, sold_count,
			max_per_order, perks, sort_order, created_at, updated_at
		FROM ticket_tiers
		WHERE event_id = $1
		ORDER BY sort_order, id
	`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tiers := make([]*model.TicketTier, 0)

	for rows.Next() {
		var tier model.TicketTier
		err := scanTier(rows, &tier)
		if err != nil {
			return nil, err
		}
		tiers = append(tiers, &tier)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tiers, nil
}

func (r *TierRepositoryImpl) FindByID(ctx context.Context, id int) (*model.TicketTier, error) {
	query := `
		SELECT id, event_id, name, price, capacity, sold_count,
			max_per_order, perks, sort_order, created_at, updated_at
		FROM ticket_tiers
		WHERE id = $1
	`

	var tier model.TicketTier
	err := scanTier(r.pool.QueryRow(ctx, query, id), &tier)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTierNotFound
		}
		return nil, err
	}

	return &tier, nil
}

func (r *TierRepositoryImpl) FindByIDs(ctx context.Context, ids []int) (map[int]*model.TicketTier, error) {
	query := `
		SELECT id, event_id, name, price, capacity, sold_count,
			max_per_order, perks, sort_order, created_at, updated_at
		FROM ticket_tiers
		WHERE id = ANY($1)
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tiers, err := collectTiers(rows)
	if err != nil {
		return nil, err
	}

	// 任一 id 沒找到都視為錯誤，呼叫端不用再比對
	if len(tiers) != len(ids) {
		return nil, apperrors.ErrTierNotFound
	}

	return tiers, nil
}

// FindByIDsWithLock 以固定順序(id 遞增)鎖定所有票種，避免多票種訂單互相死鎖
func (r *TierRepositoryImpl) FindByIDsWithLock(ctx context.Context, tx pgx.Tx, ids []int) (map[int]*model.TicketTier, error) {
	sorted := make([]int, len(ids))
	copy(sorted, ids)
	sort.Ints(sorted)

	query := `
		SELECT id, event_id, name, price, capacity, sold_count,
			max_per_order, perks, sort_order, created_at, updated_at
		FROM ticket_tiers
		WHERE id = $1
		FOR UPDATE
	`

	tiers := make(map[int]*model.TicketTier, len(sorted))
	for _, id := range sorted {
		var tier model.TicketTier
		err := scanTier(tx.QueryRow(ctx, query, id), &tier)
		if err != nil {
			if err == pgx.ErrNoRows {
				return nil, apperrors.ErrTierNotFound
			}
			return nil, err
		}
		tiers[tier.ID] = &tier
	}

	return tiers, nil
}

func (r *TierRepositoryImpl) IncrementSold(ctx context.Context, tx pgx.Tx, id int, quantity int) error {
	// sold_count 永不超過 capacity，條件式更新是最後一道防線
	query := `
		UPDATE ticket_tiers
		SET sold_count = sold_count + $1, updated_at = $2
		WHERE id = $3 AND sold_count + $1 <= capacity
	`

	result, err := tx.Exec(ctx, query, quantity, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrInsufficientInventory
	}

	return nil
}

func (r *TierRepositoryImpl) DecrementSold(ctx context.Context, tx pgx.Tx, id int, quantity int) error {
	query := `
		UPDATE ticket_tiers
		SET sold_count = sold_count - $1, updated_at = $2
		WHERE id = $3 AND sold_count >= $1
	`

	result, err := tx.Exec(ctx, query, quantity, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrTierNotFound
	}

	return nil
}

func scanTier(row pgx.Row, tier *model.TicketTier) error {
	return row.Scan(
		&tier.ID,
		&tier.EventID,
		&tier.Name,
		&tier.Price,
		&tier.Capacity,
		&tier.SoldCount,
		&tier.MaxPerOrder,
		&tier.Perks,
		&tier.SortOrder,
		&tier.CreatedAt,
		&tier.UpdatedAt,
	)
}

func collectTiers(rows pgx.Rows) (map[int]*model.TicketTier, error) {
	tiers := make(map[int]*model.TicketTier)
	for rows.Next() {
		var tier model.TicketTier
		if err := scanTier(rows, &tier); err != nil {
			return nil, err
		}
		tiers[tier.ID] = &tier
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tiers, nil
}
