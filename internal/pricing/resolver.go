package pricing

import (
	"github.com/hackathonweekly/ticketing/internal/model"
	apperrors "github.com/hackathonweekly/ticketing/pkg/app_errors"

	"github.com/shopspring/decimal"
)

// Quote 定價結果，建單時寫入訂單後不再變動
type Quote struct {
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Currency    string          `json:"currency"`
}

// Resolve 解析 N 張票應收金額。純函數，無副作用，可併發重複呼叫。
//
// 定價規則（精確匹配，不做隱式乘法）：
//  1. quantity == 1：收 basePrice
//  2. quantity > 1：必須有 Quantity 恰好相等的套票階層，收該階層總價，
//     單價 = 總價 / 數量（不在此處捨入）
//  3. 沒有匹配的階層一律拒絕，絕不退回 basePrice × quantity——
//     套票價是主辦方逐檔啟用的，避免漏配階層時靜默錯價
func Resolve(basePrice decimal.Decimal, currency string, tiers []model.PriceTier, quantity int) (Quote, error) {
	if quantity <= 0 {
		return Quote{}, apperrors.ErrInvalidQuantity
	}

	if quantity == 1 {
		return Quote{
			UnitPrice:   basePrice,
			TotalAmount: basePrice,
			Currency:    defaultCurrency(currency),
		}, nil
	}

	for _, tier := range tiers {
		if tier.Quantity != quantity {
			continue
		}

		cur := tier.Currency
		if cur == "" {
			cur = currency
		}
		return Quote{
			UnitPrice:   tier.Price.Div(decimal.NewFromInt(int64(quantity))),
			TotalAmount: tier.Price,
			Currency:    defaultCurrency(cur),
		}, nil
	}

	return Quote{}, apperrors.ErrUnsupportedQuantity
}

func defaultCurrency(currency string) string {
	if currency == "" {
		return model.DefaultCurrency
	}
	return currency
}
