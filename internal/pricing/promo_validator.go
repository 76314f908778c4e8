package pricing

import (
	"context"
	"time"

	"go-ticket-sales-engine/internal/model"
	"go-ticket-sales-engine/internal/repository"
	apperrors "go-ticket-sales-engine/pkg/app_errors"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// PromoValidator 驗證折扣碼並計算折扣金額。
// 驗證絕不遞增 usage_count，遞增只發生在購買提交成功後。
type PromoValidator interface {
	// Resolve 以正規化後的 code 查找並驗證（過期、使用上限）
	Resolve(ctx context.Context, eventID int, code string) (*model.PromoCode, error)
}

type PromoValidatorImpl struct {
	repo repository.PromoRepository
	now  func() time.Time
}

func NewPromoValidator(repo repository.PromoRepository) PromoValidator {
	return &PromoValidatorImpl{
		repo: repo,
		now:  time.Now,
	}
}

func (v *PromoValidatorImpl) Resolve(ctx context.Context, eventID int, code string) (*model.PromoCode, error) {
	canonical := model.CanonicalPromoCode(code)
	if canonical == "" {
		return nil, apperrors.ErrPromoNotFound
	}

	promo, err := v.repo.FindByCode(ctx, eventID, canonical)
	if err != nil {
		return nil, err
	}

	if promo.IsExpired(v.now()) {
		return nil, apperrors.ErrPromoExpired
	}
	if promo.IsExhausted() {
		return nil, apperrors.ErrPromoExhausted
	}

	return promo, nil
}

// PromoDiscountAmount 百分比折扣金額 = base × percent / 100，
// 以 banker's rounding 取到分，且不超過 base（折扣不能把基底打成負數）。
func PromoDiscountAmount(promo *model.PromoCode, base decimal.Decimal) decimal.Decimal {
	if base.Sign() <= 0 {
		return decimal.Zero
	}

	amount := base.Mul(promo.DiscountPercent).Div(oneHundred).RoundBank(2)
	if amount.GreaterThan(base) {
		return base
	}
	return amount
}
