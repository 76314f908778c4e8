package model

import (
	apperrors "go-ticket-sales-engine/pkg/app_errors"
)

// LineItem 購物車中的一行：票種與數量
type LineItem struct {
	TierID   int `json:"tier_id" binding:"required"`
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// Cart 暫時性的購買選擇，不落地。數量驗證在這裡做，定價不再重複檢查。
type Cart struct {
	EventID int
	Items   []LineItem
}

// NewCart 建構時驗證：至少一個行項目、數量 >= 1、同一票種不得重複
func NewCart(eventID int, items []LineItem) (*Cart, error) {
	if eventID <= 0 || len(items) == 0 {
		return nil, apperrors.ErrInvalidInput
	}

	seen := make(map[int]bool, len(items))
	for _, item := range items {
		if item.TierID <= 0 || item.Quantity < 1 {
			return nil, apperrors.ErrInvalidInput
		}
		if seen[item.TierID] {
			return nil, apperrors.ErrInvalidInput
		}
		seen[item.TierID] = true
	}

	return &Cart{EventID: eventID, Items: items}, nil
}

// TotalQuantity 全部行項目的數量總和，團體折扣用
func (c *Cart) TotalQuantity() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// TierIDs 回傳購物車內所有票種 id
func (c *Cart) TierIDs() []int {
	ids := make([]int, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.TierID)
	}
	return ids
}
