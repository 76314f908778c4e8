package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentTransaction 與完成購買一對一的財務稽核紀錄，只增不改
type PaymentTransaction struct {
	ID            int             `json:"id" db:"id"`
	TicketID      int             `json:"ticket_id" db:"ticket_id"`
	Subtotal      decimal.Decimal `json:"subtotal" db:"subtotal"`
	GroupDiscount decimal.Decimal `json:"group_discount" db:"group_discount"`
	PromoDiscount decimal.Decimal `json:"promo_discount" db:"promo_discount"`
	ServiceFee    decimal.Decimal `json:"service_fee" db:"service_fee"`
	Total         decimal.Decimal `json:"total" db:"total"`
	Method        string          `json:"method" db:"method"`
	Status        PaymentStatus   `json:"status" db:"status"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}
