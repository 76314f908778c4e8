package repository

import (
	"context"

	"go-ticket-sales-engine/internal/model"
	apperrors "go-ticket-sales-engine/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WaitlistRepository interface {
	FindByID(ctx context.Context, id int) (*model.WaitlistEntry, error)
	// FindActive 依 (event, tier, userID) 找現有條目；userID 為 nil 時退回用 email 當身分
	FindActive(ctx context.Context, eventID int, tierID *int, userID *int, email string) (*model.WaitlistEntry, error)
	ListByScope(ctx context.Context, eventID int, tierID *int) ([]*model.WaitlistEntry, error)
	// FirstInScope 該範圍內 position 最小的條目，候補通知用
	FirstInScope(ctx context.Context, eventID int, tierID *int) (*model.WaitlistEntry, error)
	Delete(ctx context.Context, id int) error

	// Transaction methods
	// LockScope 以 advisory lock 序列化同一 (event, tier) 範圍的加入；
	// 不同範圍互不阻塞。空範圍鎖不到任何 row，所以不能用 FOR UPDATE。
	LockScope(ctx context.Context, tx pgx.Tx, eventID int, tierID *int) error
	MaxPosition(ctx context.Context, tx pgx.Tx, eventID int, tierID *int) (int, error)
	// FindActiveTx 同 FindActive，但在持有 scope lock 的交易內重查，擋掉同一人並發加入
	FindActiveTx(ctx context.Context, tx pgx.Tx, eventID int, tierID *int, userID *int, email string) (*model.WaitlistEntry, error)
	Create(ctx context.Context, tx pgx.Tx, entry *model.WaitlistEntry) (*model.WaitlistEntry, error)
}

type WaitlistRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewWaitlistRepository(pool *pgxpool.Pool) WaitlistRepository {
	return &WaitlistRepositoryImpl{
		pool: pool,
	}
}

// tier_id 為 NULL 時用 0 當鎖 key，票種 id 從 1 起跳不會撞到
func advisoryTierKey(tierID *int) int {
	if tierID == nil {
		return 0
	}
	return *tierID
}

func (r *WaitlistRepositoryImpl) LockScope(ctx context.Context, tx pgx.Tx, eventID int, tierID *int) error {
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1::int, $2::int)`, eventID, advisoryTierKey(tierID))
	return err
}

func (r *WaitlistRepositoryImpl) MaxPosition(ctx context.Context, tx pgx.Tx, eventID int, tierID *int) (int, error) {
	query := `
		SELECT COALESCE(MAX(position), 0)
		FROM waitlist_entries
		WHERE event_id = $1 AND tier_id IS NOT DISTINCT FROM $2
	`

	var max int
	err := tx.QueryRow(ctx, query, eventID, tierID).Scan(&max)
	if err != nil {
		return 0, err
	}

	return max, nil
}

func (r *WaitlistRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, entry *model.WaitlistEntry) (*model.WaitlistEntry, error) {
	query := `
		INSERT INTO waitlist_entries (event_id, tier_id, name, email, user_id, position)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := tx.QueryRow(ctx, query,
		entry.EventID, entry.TierID, entry.Name, entry.Email, entry.UserID, entry.Position,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return nil, err
	}

	return entry, nil
}

func (r *WaitlistRepositoryImpl) FindByID(ctx context.Context, id int) (*model.WaitlistEntry, error) {
	query := `
		SELECT id, event_id, tier_id, name, email, user_id, position, created_at
		FROM waitlist_entries
		WHERE id = $1
	`

	var entry model.WaitlistEntry
	err := scanWaitlistEntry(r.pool.QueryRow(ctx, query, id), &entry)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrWaitlistEntryNotFound
		}
		return nil, err
	}

	return &entry, nil
}

func (r *WaitlistRepositoryImpl) FindActive(ctx context.Context, eventID int, tierID *int, userID *int, email string) (*model.WaitlistEntry, error) {
	return r.findActive(ctx, r.pool, eventID, tierID, userID, email)
}

func (r *WaitlistRepositoryImpl) FindActiveTx(ctx context.Context, tx pgx.Tx, eventID int, tierID *int, userID *int, email string) (*model.WaitlistEntry, error) {
	return r.findActive(ctx, tx, eventID, tierID, userID, email)
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *WaitlistRepositoryImpl) findActive(ctx context.Context, q rowQuerier, eventID int, tierID *int, userID *int, email string) (*model.WaitlistEntry, error) {
	var (
		query string
		args  []interface{}
	)

	if userID != nil {
		query = `
			SELECT id, event_id, tier_id, name, email, user_id, position, created_at
			FROM waitlist_entries
			WHERE event_id = $1 AND tier_id IS NOT DISTINCT FROM $2 AND user_id = $3
		`
		args = []interface{}{eventID, tierID, *userID}
	} else {
		query = `
			SELECT id, event_id, tier_id, name, email, user_id, position, created_at
			FROM waitlist_entries
			WHERE event_id = $1 AND tier_id IS NOT DISTINCT FROM $2 AND email = $3
		`
		args = []interface{}{eventID, tierID, email}
	}

	var entry model.WaitlistEntry
	err := scanWaitlistEntry(q.QueryRow(ctx, query, args...), &entry)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrWaitlistEntryNotFound
		}
		return nil, err
	}

	return &entry, nil
}

func (r *WaitlistRepositoryImpl) ListByScope(ctx context.Context, eventID int, tierID *int) ([]*model.WaitlistEntry, error) {
	query := `
		SELECT id, event_id, tier_id, name, email, user_id, position, created_at
		FROM waitlist_entries
		WHERE event_id = $1 AND tier_id IS NOT DISTINCT FROM $2
		ORDER BY position
	`

	rows, err := r.pool.Query(ctx, query, eventID, tierID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*model.WaitlistEntry, 0)

	for rows.Next() {
		var entry model.WaitlistEntry
		if err := scanWaitlistEntry(rows, &entry); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *WaitlistRepositoryImpl) FirstInScope(ctx context.Context, eventID int, tierID *int) (*model.WaitlistEntry, error) {
	query := `
		SELECT id, event_id, tier_id, name, email, user_id, position, created_at
		FROM waitlist_entries
		WHERE event_id = $1 AND tier_id IS NOT DISTINCT FROM $2
		ORDER BY position
		LIMIT 1
	`

	var entry model.WaitlistEntry
	err := scanWaitlistEntry(r.pool.QueryRow(ctx, query, eventID, tierID), &entry)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrWaitlistEntryNotFound
		}
		return nil, err
	}

	return &entry, nil
}

// Delete 離開候補。留下的人不重排 position：position 是「加入時的順位」。
func (r *WaitlistRepositoryImpl) Delete(ctx context.Context, id int) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM waitlist_entries WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrWaitlistEntryNotFound
	}

	return nil
}

func scanWaitlistEntry(row pgx.Row, entry *model.WaitlistEntry) error {
	return row.Scan(
		&entry.ID,
		&entry.EventID,
		&entry.TierID,
		&entry.Name,
		&entry.Email,
		&entry.UserID,
		&entry.Position,
		&entry.CreatedAt,
	)
}
