package policy

import (
	"fmt"

	"github.com/hackathonweekly/ticketing/internal/model"
	apperrors "github.com/hackathonweekly/ticketing/pkg/app_errors"

	"github.com/shopspring/decimal"
)

// refundAmountTolerance 指定金額與訂單總額的允許誤差
var refundAmountTolerance = decimal.New(1, -6) // 1e-6

// RequiresRefundBeforeCancellation 報名取消前是否必須先完成退款。
// 只有掛著已付款或退款中訂單的報名會被擋下；其餘狀態直接取消，無金流動作。
func RequiresRefundBeforeCancellation(status model.OrderStatus) bool {
	return status == model.OrderStatusPaid || status == model.OrderStatusRefundPending
}

// ResolveRefundAmount 決定退款金額，是全系統唯一的退款金額出口。
// 平台只支援全額退款：requested 可省略；帶了就必須等於訂單總額，
// 任何差額（含少退）都拒絕，呼叫方不可繞過此函數發部分退款。
func ResolveRefundAmount(status model.OrderStatus, totalAmount decimal.Decimal, requested *decimal.Decimal) (decimal.Decimal, error) {
	if status != model.OrderStatusPaid {
		return decimal.Zero, fmt.Errorf("%w: order status does not permit refund", apperrors.ErrPolicyViolation)
	}

	if totalAmount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("%w: invalid refund amount", apperrors.ErrPolicyViolation)
	}

	if requested != nil && requested.Sub(totalAmount).Abs().GreaterThan(refundAmountTolerance) {
		return decimal.Zero, fmt.Errorf("%w: only full refunds are supported, amount must equal the order total", apperrors.ErrPolicyViolation)
	}

	return totalAmount, nil
}
