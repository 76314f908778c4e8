package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrTierNotFound          = errors.New("ticket tier not found")
	ErrTicketNotFound        = errors.New("ticket not found")
	ErrWaitlistEntryNotFound = errors.New("waitlist entry not found")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrPerOrderLimitExceeded = errors.New("per-order limit exceeded")
	ErrPromoNotFound         = errors.New("promo code not found")
	ErrPromoExpired          = errors.New("promo code expired")
	ErrPromoExhausted        = errors.New("promo code usage exhausted")
	ErrInvalidInput          = errors.New("invalid input")
	ErrInternalServerError   = errors.New("internal server error")
)

// InsufficientInventoryError 庫存不足：帶上是哪個 tier 失敗，UI 才能指向具體的行項目
type InsufficientInventoryError struct {
	TierID    int
	Requested int
	Available int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory for tier %d: requested %d, available %d",
		e.TierID, e.Requested, e.Available)
}

func (e *InsufficientInventoryError) Unwrap() error {
	return ErrInsufficientInventory
}

// PerOrderLimitError 超過單筆訂單購買上限
type PerOrderLimitError struct {
	TierID    int
	Requested int
	Limit     int
}

func (e *PerOrderLimitError) Error() string {
	return fmt.Sprintf("per-order limit exceeded for tier %d: requested %d, limit %d",
		e.TierID, e.Requested, e.Limit)
}

func (e *PerOrderLimitError) Unwrap() error {
	return ErrPerOrderLimitExceeded
}
