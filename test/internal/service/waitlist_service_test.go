package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"go-ticket-sales-engine/internal/model"
	apperrors "go-ticket-sales-engine/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitlistService_Join_SequentialPositions(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	ctx := context.Background()
	svc := newWaitlistService(t)

	tierID := createTestTier(t, 1, "GA", "20", 10, 10)

	for i := 1; i <= 3; i++ {
		entry, err := svc.Join(ctx, model.JoinWaitlistRequest{
			EventID: 1,
			TierID:  &tierID,
			Name:    fmt.Sprintf("User%d", i),
			Email:   fmt.Sprintf("user%d@test.com", i),
		})
		require.NoError(t, err)
		assert.Equal(t, i, entry.Position, "positions assigned in join order")
	}

	// 票種範圍跟活動一般範圍各自計數
	general, err := svc.Join(ctx, model.JoinWaitlistRequest{
		EventID: 1,
		Name:    "General User",
		Email:   "general@test.com",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, general.Position)
	assert.Nil(t, general.TierID)
}

func TestWaitlistService_Join_Idempotent(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	ctx := context.Background()
	svc := newWaitlistService(t)

	req := model.JoinWaitlistRequest{
		EventID: 1,
		Name:    "Alice",
		Email:   "alice@test.com",
	}

	first, err := svc.Join(ctx, req)
	require.NoError(t, err)

	// 重複加入回傳既有條目，位置不變
	second, err := svc.Join(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Position, second.Position)

	entries, err := svc.ListByScope(ctx, 1, nil)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWaitlistService_Join_IdempotentByUserID(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	ctx := context.Background()
	svc := newWaitlistService(t)

	userID := 42

	first, err := svc.Join(ctx, model.JoinWaitlistRequest{
		EventID: 1,
		Name:    "Bob",
		Email:   "bob@old.com",
		UserID:  &userID,
	})
	require.NoError(t, err)

	// 同一個 userID 即使換了 email 也算同一人
	second, err := svc.Join(ctx, model.JoinWaitlistRequest{
		EventID: 1,
		Name:    "Bob",
		Email:   "bob@new.com",
		UserID:  &userID,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestWaitlistService_Join_InvalidInput(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	ctx := context.Background()
	svc := newWaitlistService(t)

	_, err := svc.Join(ctx, model.JoinWaitlistRequest{EventID: 1, Name: "X", Email: "  "})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.Join(ctx, model.JoinWaitlistRequest{EventID: 0, Name: "X", Email: "x@test.com"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

// 離開候補不重排：留下的人位置不變，空出的號碼不回收
func TestWaitlistService_Leave_NoRenumber(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	ctx := context.Background()
	svc := newWaitlistService(t)

	entries := make([]*model.WaitlistEntry, 3)
	for i := 0; i < 3; i++ {
		entry, err := svc.Join(ctx, model.JoinWaitlistRequest{
			EventID: 1,
			Name:    fmt.Sprintf("User%d", i),
			Email:   fmt.Sprintf("user%d@test.com", i),
		})
		require.NoError(t, err)
		entries[i] = entry
	}

	require.NoError(t, svc.Leave(ctx, entries[1].ID))

	remaining, err := svc.ListByScope(ctx, 1, nil)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, 1, remaining[0].Position)
	assert.Equal(t, 3, remaining[1].Position)

	// 新加入者接在最大位置之後，不是補洞
	newcomer, err := svc.Join(ctx, model.JoinWaitlistRequest{
		EventID: 1,
		Name:    "Newcomer",
		Email:   "new@test.com",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, newcomer.Position)

	// 離開後可以重新加入，拿到的是新位置
	rejoined, err := svc.Join(ctx, model.JoinWaitlistRequest{
		EventID: 1,
		Name:    "User1",
		Email:   "user1@test.com",
	})
	require.NoError(t, err)
	assert.NotEqual(t, entries[1].ID, rejoined.ID)
	assert.Equal(t, 5, rejoined.Position)
}

func TestWaitlistService_Leave_NotFound(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	svc := newWaitlistService(t)
	err := svc.Leave(context.Background(), 99999)
	assert.ErrorIs(t, err, apperrors.ErrWaitlistEntryNotFound)
}

// 20 人併發加入同一範圍：位置必須恰好是 1..20，不重複不跳號
func TestConcurrentWaitlistJoin_UniquePositions(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	ctx := context.Background()
	svc := newWaitlistService(t)

	concurrentJoiners := 20

	var wg sync.WaitGroup
	positions := make([]int, concurrentJoiners)
	joinErrs := make([]error, concurrentJoiners)

	for i := 0; i < concurrentJoiners; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()

			entry, err := svc.Join(ctx, model.JoinWaitlistRequest{
				EventID: 1,
				Name:    fmt.Sprintf("Joiner%d", index),
				Email:   fmt.Sprintf("joiner%d@test.com", index),
			})
			joinErrs[index] = err
			if err == nil {
				positions[index] = entry.Position
			}
		}(i)
	}

	wg.Wait()

	for i, err := range joinErrs {
		require.NoError(t, err, "joiner %d failed", i)
	}

	sort.Ints(positions)
	for i := 0; i < concurrentJoiners; i++ {
		assert.Equal(t, i+1, positions[i], "positions must be dense 1..N")
	}
}
