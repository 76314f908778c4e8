package pricing

import (
	"sort"

	apperrors "go-ticket-sales-engine/pkg/app_errors"

	"github.com/shopspring/decimal"
)

// GroupDiscountRule 一個折扣級距：總數量達 MinQuantity 即適用 DiscountPercent
type GroupDiscountRule struct {
	MinQuantity     int             `json:"min_quantity"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// GroupDiscountTable 依總數量查折扣百分比的規則表。
// 級距不可疊加：買家只拿到符合條件的最高單一級距。
type GroupDiscountTable struct {
	rules []GroupDiscountRule
}

// NewGroupDiscountTable 建表時排序並驗證：MinQuantity 重複視為設定錯誤
func NewGroupDiscountTable(rules []GroupDiscountRule) (*GroupDiscountTable, error) {
	sorted := make([]GroupDiscountRule, len(rules))
	copy(sorted, rules)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MinQuantity < sorted[j].MinQuantity
	})

	for i, rule := range sorted {
		if rule.MinQuantity < 1 || rule.DiscountPercent.IsNegative() {
			return nil, apperrors.ErrInvalidInput
		}
		if i > 0 && sorted[i-1].MinQuantity == rule.MinQuantity {
			return nil, apperrors.ErrInvalidInput
		}
	}

	return &GroupDiscountTable{rules: sorted}, nil
}

// DiscountPercent 回傳 MinQuantity <= q 的最高級距的折扣百分比，未達最低級距回傳 0
func (t *GroupDiscountTable) DiscountPercent(q int) decimal.Decimal {
	percent := decimal.Zero
	for _, rule := range t.rules {
		if rule.MinQuantity > q {
			break
		}
		percent = rule.DiscountPercent
	}
	return percent
}

// NextBracket 回傳 MinQuantity > q 的最小級距，供「再買 N 張享 X% 折扣」提示使用。
// 已達最高級距時回傳 nil。
func (t *GroupDiscountTable) NextBracket(q int) *GroupDiscountRule {
	for _, rule := range t.rules {
		if rule.MinQuantity > q {
			next := rule
			return &next
		}
	}
	return nil
}
