package cache

import (
	"context"
	"fmt"
	"strconv"

	"go-ticket-sales-engine/internal/model"
	apperrors "go-ticket-sales-engine/pkg/app_errors"

	"github.com/redis/go-redis/v9"
)

// TierAvailability 顯示用的快取快照，不是權威庫存。
// 權威值永遠在 Postgres，這裡只是讓報價/列表頁不用每次打 DB。
type TierAvailability struct {
	Remaining int
	Price     string
}

type AvailabilityCache interface {
	// WarmUp 預熱：把票種的剩餘數與價格寫進 Redis
	WarmUp(ctx context.Context, tier *model.TicketTier) error
	// Get 讀取快取的剩餘數與價格
	Get(ctx context.Context, tierID int) (TierAvailability, error)
	// AdjustRemaining 保留/釋放後同步調整剩餘數(正數代表釋出)
	AdjustRemaining(ctx context.Context, tierID int, delta int) error
	// Invalidate 清掉快取，下次讀取回源 DB
	Invalidate(ctx context.Context, tierID int) error
}

type AvailabilityCacheImpl struct {
	client *redis.Client
}

func NewAvailabilityCache(client *redis.Client) AvailabilityCache {
	return &AvailabilityCacheImpl{
		client: client,
	}
}

func (c *AvailabilityCacheImpl) key(tierID int) string {
	return fmt.Sprintf("tier:%d:availability", tierID)
}

func (c *AvailabilityCacheImpl) WarmUp(ctx context.Context, tier *model.TicketTier) error {
	return c.client.HSet(ctx, c.key(tier.ID), map[string]interface{}{
		"remaining": tier.Remaining(),
		"price":     tier.Price.StringFixed(2),
	}).Err()
}

func (c *AvailabilityCacheImpl) Get(ctx context.Context, tierID int) (TierAvailability, error) {
	result, err := c.client.HGetAll(ctx, c.key(tierID)).Result()
	if err != nil {
		return TierAvailability{}, err
	}

	// 檢查 key 是否存在
	if len(result) == 0 {
		return TierAvailability{}, apperrors.ErrTierNotFound
	}

	remaining, err := strconv.Atoi(result["remaining"])
	if err != nil {
		return TierAvailability{}, fmt.Errorf("invalid remaining: %v", err)
	}

	return TierAvailability{
		Remaining: remaining,
		Price:     result["price"],
	}, nil
}

func (c *AvailabilityCacheImpl) AdjustRemaining(ctx context.Context, tierID int, delta int) error {
	return c.client.HIncrBy(ctx, c.key(tierID), "remaining", int64(delta)).Err()
}

func (c *AvailabilityCacheImpl) Invalidate(ctx context.Context, tierID int) error {
	return c.client.Del(ctx, c.key(tierID)).Err()
}
