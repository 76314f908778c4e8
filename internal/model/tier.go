package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TicketTier 一個活動內可購買的票種
type TicketTier struct {
	ID          int             `json:"id" db:"id"`
	EventID     int             `json:"event_id" db:"event_id"`
	Name        string          `json:"name" db:"name"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Capacity    int             `json:"capacity" db:"capacity"`
	SoldCount   int             `json:"sold_count" db:"sold_count"`
	MaxPerOrder int             `json:"max_per_order" db:"max_per_order"`
	Perks       []string        `json:"perks" db:"perks"`
	SortOrder   int             `json:"sort_order" db:"sort_order"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// Remaining 剩餘庫存
func (t *TicketTier) Remaining() int {
	return t.Capacity - t.SoldCount
}

func (t *TicketTier) IsSoldOut() bool {
	return t.Remaining() <= 0
}

// IsAvailable 檢查票種是否可購買
func (t *TicketTier) IsAvailable() bool {
	return !t.IsSoldOut()
}

// CreateTierRequest 創建票種請求
type CreateTierRequest struct {
	EventID     int      `json:"event_id" binding:"required"`
	Name        string   `json:"name" binding:"required"`
	Price       string   `json:"price" binding:"required"`
	Capacity    int      `json:"capacity" binding:"min=0"`
	MaxPerOrder int      `json:"max_per_order" binding:"required,min=1"`
	Perks       []string `json:"perks"`
	SortOrder   int      `json:"sort_order"`
}

// TierResponse 票種響應
type TierResponse struct {
	ID          int      `json:"id"`
	EventID     int      `json:"event_id"`
	Name        string   `json:"name"`
	Price       string   `json:"price"`
	Capacity    int      `json:"capacity"`
	SoldCount   int      `json:"sold_count"`
	Remaining   int      `json:"remaining"`
	MaxPerOrder int      `json:"max_per_order"`
	Perks       []string `json:"perks"`
	SortOrder   int      `json:"sort_order"`
	Available   bool     `json:"available"`
}

func NewTierResponse(t *TicketTier) TierResponse {
	return TierResponse{
		ID:          t.ID,
		EventID:     t.EventID,
		Name:        t.Name,
		Price:       t.Price.StringFixed(2),
		Capacity:    t.Capacity,
		SoldCount:   t.SoldCount,
		Remaining:   t.Remaining(),
		MaxPerOrder: t.MaxPerOrder,
		Perks:       t.Perks,
		SortOrder:   t.SortOrder,
		Available:   t.IsAvailable(),
	}
}
