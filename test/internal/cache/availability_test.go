package cache

import (
	"context"
	"testing"

	"go-ticket-sales-engine/internal/cache"
	"go-ticket-sales-engine/internal/model"
	apperrors "go-ticket-sales-engine/pkg/app_errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func testTier(id, capacity, soldCount int, price string) *model.TicketTier {
	return &model.TicketTier{
		ID:        id,
		EventID:   1,
		Name:      "GA",
		Price:     decimal.RequireFromString(price),
		Capacity:  capacity,
		SoldCount: soldCount,
	}
}

func TestAvailabilityCache_WarmUpAndGet(t *testing.T) {
	ctx := context.Background()
	avail := cache.NewAvailabilityCache(getTestRdb())
	clearRedis(ctx)
	t.Cleanup(func() {
		clearRedis(ctx)
	})

	t.Run("Success", func(t *testing.T) {
		defer clearRedis(ctx)
		err := avail.WarmUp(ctx, testTier(1, 100, 30, "49.90"))
		assert.NoError(t, err)

		got, err := avail.Get(ctx, 1)
		assert.NoError(t, err)
		assert.Equal(t, 70, got.Remaining)
		assert.Equal(t, "49.90", got.Price)
	})

	t.Run("Failed - NotFound", func(t *testing.T) {
		defer clearRedis(ctx)
		_, err := avail.Get(ctx, 1)
		assert.Equal(t, apperrors.ErrTierNotFound, err)
	})
}

func TestAvailabilityCache_AdjustRemaining(t *testing.T) {
	ctx := context.Background()
	avail := cache.NewAvailabilityCache(getTestRdb())
	clearRedis(ctx)
	t.Cleanup(func() {
		clearRedis(ctx)
	})

	t.Run("ReserveThenRelease", func(t *testing.T) {
		defer clearRedis(ctx)
		assert.NoError(t, avail.WarmUp(ctx, testTier(1, 10, 0, "20")))

		// 購買扣 3
		assert.NoError(t, avail.AdjustRemaining(ctx, 1, -3))
		got, err := avail.Get(ctx, 1)
		assert.NoError(t, err)
		assert.Equal(t, 7, got.Remaining)

		// 取消還 2
		assert.NoError(t, avail.AdjustRemaining(ctx, 1, 2))
		got, err = avail.Get(ctx, 1)
		assert.NoError(t, err)
		assert.Equal(t, 9, got.Remaining)
	})
}

func TestAvailabilityCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	avail := cache.NewAvailabilityCache(getTestRdb())
	clearRedis(ctx)
	t.Cleanup(func() {
		clearRedis(ctx)
	})

	assert.NoError(t, avail.WarmUp(ctx, testTier(1, 10, 0, "20")))
	assert.NoError(t, avail.Invalidate(ctx, 1))

	_, err := avail.Get(ctx, 1)
	assert.Equal(t, apperrors.ErrTierNotFound, err)
}
