package policy_test

import (
	"testing"

	"github.com/hackathonweekly/ticketing/internal/model"
	"github.com/hackathonweekly/ticketing/internal/policy"
	apperrors "github.com/hackathonweekly/ticketing/pkg/app_errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequiresRefundBeforeCancellation(t *testing.T) {
	tests := []struct {
		status model.OrderStatus
		want   bool
	}{
		{model.OrderStatusPending, false},
		{model.OrderStatusPaid, true},
		{model.OrderStatusRefundPending, true},
		{model.OrderStatusRefunded, false},
		{model.OrderStatusCancelled, false},
		{model.OrderStatusExpired, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, policy.RequiresRefundBeforeCancellation(tt.status))
		})
	}
}

func TestResolveRefundAmount(t *testing.T) {
	total := decimal.RequireFromString("299")

	t.Run("full refund without requested amount", func(t *testing.T) {
		amount, err := policy.ResolveRefundAmount(model.OrderStatusPaid, total, nil)

		require.NoError(t, err)
		assert.True(t, amount.Equal(total))
	})

	t.Run("requested amount equal to total", func(t *testing.T) {
		requested := decimal.RequireFromString("299")
		amount, err := policy.ResolveRefundAmount(model.OrderStatusPaid, total, &requested)

		require.NoError(t, err)
		assert.True(t, amount.Equal(total))
	})

	t.Run("partial refund rejected even when smaller", func(t *testing.T) {
		requested := decimal.RequireFromString("199")
		_, err := policy.ResolveRefundAmount(model.OrderStatusPaid, total, &requested)

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrPolicyViolation)
		assert.Contains(t, err.Error(), "full refund")
	})

	t.Run("over-refund rejected", func(t *testing.T) {
		requested := decimal.RequireFromString("300")
		_, err := policy.ResolveRefundAmount(model.OrderStatusPaid, total, &requested)

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrPolicyViolation)
	})

	t.Run("difference within tolerance accepted", func(t *testing.T) {
		requested := decimal.RequireFromString("299.0000005")
		amount, err := policy.ResolveRefundAmount(model.OrderStatusPaid, total, &requested)

		require.NoError(t, err)
		// 退款金額永遠是訂單總額，不是請求值
		assert.True(t, amount.Equal(total))
	})

	t.Run("rejected for every non-PAID status", func(t *testing.T) {
		statuses := []model.OrderStatus{
			model.OrderStatusPending,
			model.OrderStatusRefundPending,
			model.OrderStatusRefunded,
			model.OrderStatusCancelled,
			model.OrderStatusExpired,
		}

		for _, status := range statuses {
			_, err := policy.ResolveRefundAmount(status, total, nil)
			require.Error(t, err, "status %s", status)
			assert.ErrorIs(t, err, apperrors.ErrPolicyViolation)
			assert.Contains(t, err.Error(), "does not permit refund")
		}
	})

	t.Run("zero total rejected", func(t *testing.T) {
		_, err := policy.ResolveRefundAmount(model.OrderStatusPaid, decimal.Zero, nil)

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrPolicyViolation)
		assert.Contains(t, err.Error(), "invalid refund amount")
	})

	t.Run("negative total rejected", func(t *testing.T) {
		_, err := policy.ResolveRefundAmount(model.OrderStatusPaid, decimal.RequireFromString("-10"), nil)

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrPolicyViolation)
	})
}
