package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PromoCode 活動範圍的折扣碼，code 一律以大寫正規化後儲存
type PromoCode struct {
	ID              int             `json:"id" db:"id"`
	EventID         int             `json:"event_id" db:"event_id"`
	Code            string          `json:"code" db:"code"`
	DiscountPercent decimal.Decimal `json:"discount_percent" db:"discount_percent"`
	UsageCap        *int            `json:"usage_cap,omitempty" db:"usage_cap"`
	UsageCount      int             `json:"usage_count" db:"usage_count"`
	ExpiresAt       *time.Time      `json:"expires_at,omitempty" db:"expires_at"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// CanonicalPromoCode 折扣碼查詢不分大小寫，統一轉大寫
func CanonicalPromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsExpired 檢查是否過期
func (p *PromoCode) IsExpired(now time.Time) bool {
	return p.ExpiresAt != nil && !now.Before(*p.ExpiresAt)
}

// IsExhausted 檢查使用次數是否已達上限
func (p *PromoCode) IsExhausted() bool {
	return p.UsageCap != nil && p.UsageCount >= *p.UsageCap
}

func (p *PromoCode) IsValid(now time.Time) bool {
	return !p.IsExhausted() && !p.IsExpired(now)
}
