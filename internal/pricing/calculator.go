package pricing

import (
	"go-ticket-sales-engine/internal/model"
	apperrors "go-ticket-sales-engine/pkg/app_errors"

	"github.com/shopspring/decimal"
)

// Calculator 純計算元件：購物車 + 折扣表 + 折扣碼 → 報價明細。
// 全程使用 decimal 精確運算，中間值不取整；只有折扣碼金額、服務費與總額取到分。
type Calculator struct {
	table             *GroupDiscountTable
	serviceFeePercent decimal.Decimal
}

func NewCalculator(table *GroupDiscountTable, serviceFeePercent int) *Calculator {
	return &Calculator{
		table:             table,
		serviceFeePercent: decimal.NewFromInt(int64(serviceFeePercent)),
	}
}

// Quote 計算報價。折扣依序組合：團體折扣先吃原始小計，
// 折扣碼再吃扣掉團體折扣後的餘額，不是各自獨立吃小計。
func (c *Calculator) Quote(cart *model.Cart, tiers map[int]*model.TicketTier, promo *model.PromoCode) (*model.PriceQuote, error) {
	subtotal := decimal.Zero
	for _, item := range cart.Items {
		tier, ok := tiers[item.TierID]
		if !ok {
			return nil, apperrors.ErrTierNotFound
		}
		subtotal = subtotal.Add(tier.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	groupPercent := c.table.DiscountPercent(cart.TotalQuantity())
	groupDiscount := subtotal.Mul(groupPercent).Div(oneHundred)

	promoBase := subtotal.Sub(groupDiscount)
	promoDiscount := decimal.Zero
	if promo != nil {
		promoDiscount = PromoDiscountAmount(promo, promoBase)
	}

	ticketSubtotal := subtotal.Sub(groupDiscount).Sub(promoDiscount)
	if ticketSubtotal.IsNegative() {
		ticketSubtotal = decimal.Zero
	}

	// 全額折抵的免費訂單不收服務費
	serviceFee := decimal.Zero
	if ticketSubtotal.IsPositive() {
		serviceFee = ticketSubtotal.Mul(c.serviceFeePercent).Div(oneHundred).RoundBank(2)
	}

	return &model.PriceQuote{
		Subtotal:       subtotal,
		GroupDiscount:  groupDiscount,
		PromoDiscount:  promoDiscount,
		TicketSubtotal: ticketSubtotal,
		ServiceFee:     serviceFee,
		Total:          ticketSubtotal.Add(serviceFee).RoundBank(2),
	}, nil
}

// NextBracket 直接轉發折扣表查詢，讓 UI 不需要另外拿到表
func (c *Calculator) NextBracket(q int) *GroupDiscountRule {
	return c.table.NextBracket(q)
}
