package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"go-ticket-sales-engine/internal/model"
	apperrors "go-ticket-sales-engine/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Simulates real scenario: 50 buyers simultaneously competing for 10 tickets
func TestConcurrentPurchase_NoOversell(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	ctx := context.Background()
	svc, _ := newPurchaseService(t, nil)

	concurrentBuyers := 50
	capacity := 10

	tierID := createTestTier(t, 1, "Popular GA", "20", capacity, 1)

	var wg sync.WaitGroup
	successCount := 0
	failCount := 0
	var mu sync.Mutex

	for i := 0; i < concurrentBuyers; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()

			req := model.PurchaseRequest{
				EventID: 1,
				Items:   []model.LineItem{{TierID: tierID, Quantity: 1}},
				Buyer: model.BuyerInfo{
					Name:  fmt.Sprintf("Buyer%d", index),
					Email: fmt.Sprintf("buyer%d@test.com", index),
				},
			}

			_, err := svc.Purchase(ctx, req)

			mu.Lock()
			if err == nil {
				successCount++
			} else {
				failCount++
			}
			mu.Unlock()
		}(i)
	}

	wg.Wait()

	t.Logf("50 buyers competing for 10 tickets - Success: %d, Failed: %d", successCount, failCount)

	// Critical assertions: exactly 10 tickets sold, no overselling
	assert.Equal(t, capacity, successCount, "Successful purchases should equal capacity")
	assert.Equal(t, concurrentBuyers-capacity, failCount, "40 buyers should fail")
	assert.Equal(t, capacity, getTierSoldCount(t, tierID), "sold_count should equal capacity")
}

// 最後一張票：兩個買家搶 1 張，恰好一個成功，一個收到結構化庫存不足錯誤
func TestConcurrentPurchase_LastTicket(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	ctx := context.Background()
	svc, _ := newPurchaseService(t, nil)

	tierID := createTestTierWithSold(t, 1, "GA", "20", 100, 99, 2)

	var wg sync.WaitGroup
	results := make([]error, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			_, err := svc.Purchase(ctx, model.PurchaseRequest{
				EventID: 1,
				Items:   []model.LineItem{{TierID: tierID, Quantity: 1}},
				Buyer: model.BuyerInfo{
					Name:  fmt.Sprintf("Racer%d", index),
					Email: fmt.Sprintf("racer%d@test.com", index),
				},
			})
			results[index] = err
		}(i)
	}

	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		var invErr *apperrors.InsufficientInventoryError
		require.ErrorAs(t, err, &invErr)
		assert.Equal(t, 0, invErr.Available)
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 100, getTierSoldCount(t, tierID))
}

// 折扣碼上限是全域的：20 個買家併發用同一個 cap=5 的折扣碼，
// 成功的購買恰好 5 筆，usage_count 不會超過上限，落敗者的庫存保留要被補償釋放
func TestConcurrentPurchase_PromoUsageCap(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	ctx := context.Background()
	svc, _ := newPurchaseService(t, nil)

	concurrentBuyers := 20
	usageCap := 5

	tierID := createTestTier(t, 1, "GA", "20", 1000, 5)
	promoID := createTestPromo(t, 1, "LIMITED", "10", intPtr(usageCap), 0, nil)

	var wg sync.WaitGroup
	successCount := 0
	exhaustedCount := 0
	var mu sync.Mutex

	for i := 0; i < concurrentBuyers; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()

			_, err := svc.Purchase(ctx, model.PurchaseRequest{
				EventID:   1,
				Items:     []model.LineItem{{TierID: tierID, Quantity: 1}},
				PromoCode: "LIMITED",
				Buyer: model.BuyerInfo{
					Name:  fmt.Sprintf("PromoUser%d", index),
					Email: fmt.Sprintf("promo%d@test.com", index),
				},
			})

			mu.Lock()
			if err == nil {
				successCount++
			} else if errors.Is(err, apperrors.ErrPromoExhausted) {
				exhaustedCount++
			}
			mu.Unlock()
		}(i)
	}

	wg.Wait()

	t.Logf("20 buyers with cap-5 promo - Success: %d, Exhausted: %d", successCount, exhaustedCount)

	assert.Equal(t, usageCap, successCount, "Successful purchases should equal usage cap")
	assert.Equal(t, concurrentBuyers-usageCap, exhaustedCount)
	assert.Equal(t, usageCap, getPromoUsageCount(t, promoID), "usage_count must not exceed cap")

	// 提交失敗的保留必須被補償釋放：最終 sold_count 等於成功筆數
	assert.Equal(t, usageCap, getTierSoldCount(t, tierID))
}
