package model

import "github.com/shopspring/decimal"

// PriceQuote 報價明細。只在購買提交時才落地，之前僅供前端即時顯示。
type PriceQuote struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	GroupDiscount  decimal.Decimal `json:"group_discount"`
	PromoDiscount  decimal.Decimal `json:"promo_discount"`
	TicketSubtotal decimal.Decimal `json:"ticket_subtotal"`
	ServiceFee     decimal.Decimal `json:"service_fee"`
	Total          decimal.Decimal `json:"total"`
}

// IsFree 折扣後完全免費的訂單
func (q *PriceQuote) IsFree() bool {
	return q.Total.IsZero()
}

// QuoteResponse 報價響應，金額一律輸出兩位小數字串
type QuoteResponse struct {
	Subtotal       string `json:"subtotal"`
	GroupDiscount  string `json:"group_discount"`
	PromoDiscount  string `json:"promo_discount"`
	TicketSubtotal string `json:"ticket_subtotal"`
	ServiceFee     string `json:"service_fee"`
	Total          string `json:"total"`
}

func NewQuoteResponse(q *PriceQuote) QuoteResponse {
	return QuoteResponse{
		Subtotal:       q.Subtotal.StringFixed(2),
		GroupDiscount:  q.GroupDiscount.StringFixed(2),
		PromoDiscount:  q.PromoDiscount.StringFixed(2),
		TicketSubtotal: q.TicketSubtotal.StringFixed(2),
		ServiceFee:     q.ServiceFee.StringFixed(2),
		Total:          q.Total.StringFixed(2),
	}
}
