package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/hackathonweekly/ticketing/internal/model"
	"github.com/hackathonweekly/ticketing/internal/repository"
	apperrors "github.com/hackathonweekly/ticketing/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderRepository_Create(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	repo := repository.NewOrderRepository(getTestDB())
	ctx := context.Background()

	regID := createTestRegistration(t, 1)
	ttID := createTestTicketType(t, "票種", 100)

	tx, txCleanup := setupTestWithTransaction(t)
	defer txCleanup()

	order := &model.Order{
		OrderID:        uuid.New(),
		RegistrationID: regID,
		TicketTypeID:   ttID,
		Quantity:       2,
		UnitPrice:      decimal.RequireFromString("84.5"),
		TotalAmount:    decimal.RequireFromString("169"),
		Currency:       model.DefaultCurrency,
		Status:         model.OrderStatusPending,
		ExpiresAt:      time.Now().UTC().Add(15 * time.Minute),
	}

	created, err := repo.Create(ctx, tx, order)

	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, model.OrderStatusPending, created.Status)
	assert.True(t, created.UnitPrice.Equal(decimal.RequireFromString("84.5")))
	assert.True(t, created.TotalAmount.Equal(decimal.RequireFromString("169")))
	assert.Nil(t, created.PaidAt)
	assert.False(t, created.RefundAmount.Valid)
}

func TestOrderRepository_FindByOrderID(t *testing.T) {
	repo := repository.NewOrderRepository(getTestDB())
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		regID := createTestRegistration(t, 1)
		ttID := createTestTicketType(t, "票種", 100)
		id := createTestOrder(t, regID, ttID, model.OrderStatusPending, time.Now().UTC().Add(time.Hour))

		byID, err := repo.FindByID(ctx, id)
		require.NoError(t, err)

		found, err := repo.FindByOrderID(ctx, byID.OrderID)

		require.NoError(t, err)
		assert.Equal(t, id, found.ID)
	})

	t.Run("NotFound", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		_, err := repo.FindByOrderID(ctx, uuid.New())

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrOrderNotFound, err)
	})
}

func TestOrderRepository_TransitionStatus(t *testing.T) {
	repo := repository.NewOrderRepository(getTestDB())
	ctx := context.Background()

	t.Run("PendingToPaid", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		regID := createTestRegistration(t, 1)
		ttID := createTestTicketType(t, "票種", 100)
		id := createTestOrder(t, regID, ttID, model.OrderStatusPending, time.Now().UTC().Add(time.Hour))

		tx, txCleanup := setupTestWithTransaction(t)
		defer txCleanup()

		updated, err := repo.TransitionStatus(ctx, tx, id, model.OrderStatusPending, model.OrderStatusPaid)

		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusPaid, updated.Status)
		assert.NotNil(t, updated.PaidAt)
		assert.Nil(t, updated.RefundedAt)
	})

	// 進入 REFUNDED 時 refund_amount 在 SQL 層寫死為 total_amount
	t.Run("RefundPendingToRefunded", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		regID := createTestRegistration(t, 1)
		ttID := createTestTicketType(t, "票種", 100)
		id := createTestOrder(t, regID, ttID, model.OrderStatusRefundPending, time.Now().UTC().Add(time.Hour))

		tx, txCleanup := setupTestWithTransaction(t)
		defer txCleanup()

		updated, err := repo.TransitionStatus(ctx, tx, id, model.OrderStatusRefundPending, model.OrderStatusRefunded)

		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusRefunded, updated.Status)
		assert.NotNil(t, updated.RefundedAt)
		require.True(t, updated.RefundAmount.Valid)
		assert.True(t, updated.RefundAmount.Decimal.Equal(updated.TotalAmount))
	})

	// 狀態守衛：第一個轉換生效後，鎖同一來源狀態的第二個轉換輸掉
	t.Run("FirstTransitionWins", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		regID := createTestRegistration(t, 1)
		ttID := createTestTicketType(t, "票種", 100)
		id := createTestOrder(t, regID, ttID, model.OrderStatusPending, time.Now().UTC().Add(time.Hour))

		ctx := context.Background()

		tx1, err := getTestDB().Begin(ctx)
		require.NoError(t, err)
		_, err = repo.TransitionStatus(ctx, tx1, id, model.OrderStatusPending, model.OrderStatusPaid)
		require.NoError(t, err)
		require.NoError(t, tx1.Commit(ctx))

		tx2, txCleanup := setupTestWithTransaction(t)
		defer txCleanup()

		_, err = repo.TransitionStatus(ctx, tx2, id, model.OrderStatusPending, model.OrderStatusExpired)

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrOrderStatusConflict, err)
	})

	// 狀態機不允許的轉換直接被擋，不落 SQL
	t.Run("InvalidTransition", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		regID := createTestRegistration(t, 1)
		ttID := createTestTicketType(t, "票種", 100)
		id := createTestOrder(t, regID, ttID, model.OrderStatusRefunded, time.Now().UTC().Add(time.Hour))

		tx, txCleanup := setupTestWithTransaction(t)
		defer txCleanup()

		_, err := repo.TransitionStatus(ctx, tx, id, model.OrderStatusRefunded, model.OrderStatusPending)

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrOrderStatusConflict, err)
	})

	t.Run("NotFound", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		tx, txCleanup := setupTestWithTransaction(t)
		defer txCleanup()

		_, err := repo.TransitionStatus(ctx, tx, 99999, model.OrderStatusPending, model.OrderStatusPaid)

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrOrderNotFound, err)
	})
}

func TestOrderRepository_ListExpiredPending(t *testing.T) {
	repo := repository.NewOrderRepository(getTestDB())
	ctx := context.Background()

	t.Run("OnlyExpiredPending", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		now := time.Now().UTC()
		ttID := createTestTicketType(t, "票種", 100)

		reg1 := createTestRegistration(t, 1)
		reg2 := createTestRegistration(t, 2)
		reg3 := createTestRegistration(t, 3)
		reg4 := createTestRegistration(t, 4)

		expired := createTestOrder(t, reg1, ttID, model.OrderStatusPending, now.Add(-time.Minute))
		createTestOrder(t, reg2, ttID, model.OrderStatusPending, now.Add(time.Hour)) // 還沒過期
		createTestOrder(t, reg3, ttID, model.OrderStatusPaid, now.Add(-time.Minute)) // 已付款
		expired2 := createTestOrder(t, reg4, ttID, model.OrderStatusPending, now.Add(-time.Hour))

		orders, err := repo.ListExpiredPending(ctx, now, 0, 10)

		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, expired, orders[0].ID)
		assert.Equal(t, expired2, orders[1].ID)
	})

	t.Run("KeysetPagination", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		now := time.Now().UTC()
		ttID := createTestTicketType(t, "票種", 100)

		ids := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			regID := createTestRegistration(t, i+1)
			ids = append(ids, createTestOrder(t, regID, ttID, model.OrderStatusPending, now.Add(-time.Minute)))
		}

		first, err := repo.ListExpiredPending(ctx, now, 0, 2)
		require.NoError(t, err)
		require.Len(t, first, 2)

		second, err := repo.ListExpiredPending(ctx, now, first[1].ID, 2)
		require.NoError(t, err)
		require.Len(t, second, 1)
		assert.Equal(t, ids[2], second[0].ID)
	})
}
