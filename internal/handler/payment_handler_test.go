package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hackathonweekly/ticketing/internal/handler"
	"github.com/hackathonweekly/ticketing/internal/model"
	"github.com/hackathonweekly/ticketing/internal/service/mocks"
	apperrors "github.com/hackathonweekly/ticketing/pkg/app_errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupPaymentTestRouter(mockService *mocks.OrderServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	handler.NewPaymentHandler(mockService).RegisterRoutes(router)

	return router
}

func TestPaymentCallback(t *testing.T) {
	t.Run("Success - paid", func(t *testing.T) {
		mockService := mocks.NewOrderServiceMock()
		router := setupPaymentTestRouter(mockService)

		order := pendingOrder()
		order.Status = model.OrderStatusPaid
		mockService.On("ConfirmPayment", mock.Anything, order.OrderID).Return(order, nil).Once()

		body := handler.PaymentCallbackRequest{OrderID: order.OrderID, Status: "paid"}
		req := createJSONHTTPRequest("POST", "/api/v1/payments/callback", body)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Success - failed closes the order", func(t *testing.T) {
		mockService := mocks.NewOrderServiceMock()
		router := setupPaymentTestRouter(mockService)

		order := pendingOrder()
		order.Status = model.OrderStatusCancelled
		mockService.On("FailPayment", mock.Anything, order.OrderID).Return(order, nil).Once()

		body := handler.PaymentCallbackRequest{OrderID: order.OrderID, Status: "failed"}
		req := createJSONHTTPRequest("POST", "/api/v1/payments/callback", body)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Success - refunded", func(t *testing.T) {
		mockService := mocks.NewOrderServiceMock()
		router := setupPaymentTestRouter(mockService)

		order := pendingOrder()
		order.Status = model.OrderStatusRefunded
		mockService.On("ConfirmRefund", mock.Anything, order.OrderID).Return(order, nil).Once()

		body := handler.PaymentCallbackRequest{OrderID: order.OrderID, Status: "refunded"}
		req := createJSONHTTPRequest("POST", "/api/v1/payments/callback", body)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - duplicate callback loses the guard", func(t *testing.T) {
		mockService := mocks.NewOrderServiceMock()
		router := setupPaymentTestRouter(mockService)

		orderID := uuid.New()
		mockService.On("ConfirmPayment", mock.Anything, orderID).Return(nil, apperrors.ErrOrderStatusConflict).Once()

		body := handler.PaymentCallbackRequest{OrderID: orderID, Status: "paid"}
		req := createJSONHTTPRequest("POST", "/api/v1/payments/callback", body)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - unknown status rejected by binding", func(t *testing.T) {
		mockService := mocks.NewOrderServiceMock()
		router := setupPaymentTestRouter(mockService)

		body := map[string]interface{}{"order_id": uuid.New(), "status": "voided"}
		req := createJSONHTTPRequest("POST", "/api/v1/payments/callback", body)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "ConfirmPayment")
	})
}
