package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus 付款狀態類型
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// IsValid 驗證狀態是否有效
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed,
		PaymentStatusRefunded, PaymentStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo 檢查是否可以轉換到目標狀態
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	transitions := map[PaymentStatus][]PaymentStatus{
		PaymentStatusPending:   {PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled},
		PaymentStatusCompleted: {PaymentStatusRefunded, PaymentStatusCancelled},
		PaymentStatusFailed:    {},
		PaymentStatusRefunded:  {},
		PaymentStatusCancelled: {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == target {
			return true
		}
	}
	return false
}

const (
	PaymentMethodFree     = "free"
	PaymentMethodPayLater = "pay_later"
)

// TicketLineItem 購買當下的票種快照，之後票種改價不影響已售出的票
type TicketLineItem struct {
	ID        int             `json:"id" db:"id"`
	TicketID  int             `json:"ticket_id" db:"ticket_id"`
	TierID    int             `json:"tier_id" db:"tier_id"`
	TierName  string          `json:"tier_name" db:"tier_name"`
	UnitPrice decimal.Decimal `json:"unit_price" db:"unit_price"`
	Quantity  int             `json:"quantity" db:"quantity"`
}

// Ticket 已提交購買的持久性收據
type Ticket struct {
	ID            int              `json:"id" db:"id"`
	TicketID      uuid.UUID        `json:"ticket_id" db:"ticket_uid"`
	EventID       int              `json:"event_id" db:"event_id"`
	BuyerName     string           `json:"buyer_name" db:"buyer_name"`
	BuyerEmail    string           `json:"buyer_email" db:"buyer_email"`
	PromoCode     *string          `json:"promo_code,omitempty" db:"promo_code"`
	Subtotal      decimal.Decimal  `json:"subtotal" db:"subtotal"`
	GroupDiscount decimal.Decimal  `json:"group_discount" db:"group_discount"`
	PromoDiscount decimal.Decimal  `json:"promo_discount" db:"promo_discount"`
	ServiceFee    decimal.Decimal  `json:"service_fee" db:"service_fee"`
	TotalPrice    decimal.Decimal  `json:"total_price" db:"total_price"`
	PaymentStatus PaymentStatus    `json:"payment_status" db:"payment_status"`
	PaymentMethod string           `json:"payment_method" db:"payment_method"`
	Items         []TicketLineItem `json:"items" db:"-"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
	CancelledAt   *time.Time       `json:"cancelled_at,omitempty" db:"cancelled_at"`
}

// IsCancelled 檢查票券是否已取消
func (t *Ticket) IsCancelled() bool {
	return t.CancelledAt != nil
}

// BuyerInfo 購買人資料，email 只做非空檢查，格式驗證不是引擎的責任
type BuyerInfo struct {
	Name   string `json:"name" binding:"required"`
	Email  string `json:"email" binding:"required"`
	UserID *int   `json:"user_id,omitempty"`
}

// PurchaseRequest 購買請求
type PurchaseRequest struct {
	EventID   int        `json:"event_id" binding:"required"`
	Items     []LineItem `json:"items" binding:"required,dive"`
	Buyer     BuyerInfo  `json:"buyer" binding:"required"`
	PromoCode string     `json:"promo_code"`
}

// QuoteRequest 報價請求，不需要購買人資料
type QuoteRequest struct {
	EventID   int        `json:"event_id" binding:"required"`
	Items     []LineItem `json:"items" binding:"required,dive"`
	PromoCode string     `json:"promo_code"`
}
