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
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupOrderTestRouter(mockService *mocks.OrderServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	handler.NewOrderHandler(mockService).RegisterRoutes(router)

	return router
}

func pendingOrder() *model.Order {
	return &model.Order{
		ID:          1,
		OrderID:     uuid.New(),
		Quantity:    2,
		UnitPrice:   decimal.RequireFromString("84.5"),
		TotalAmount: decimal.RequireFromString("169"),
		Currency:    "CNY",
		Status:      model.OrderStatusPending,
	}
}

func TestCreateOrder(t *testing.T) {
	createOrderRequest := model.CreateOrderRequest{
		RegistrationID: uuid.New(),
		TicketTypeID:   uuid.New(),
		Quantity:       2,
	}

	t.Run("Success", func(t *testing.T) {
		mockService := mocks.NewOrderServiceMock()
		router := setupOrderTestRouter(mockService)

		mockService.On("CreateOrder", mock.Anything, mock.Anything).Return(pendingOrder(), nil).Once()

		req := createJSONHTTPRequest("POST", "/api/v1/orders", createOrderRequest)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - ErrCapacityExceeded", func(t *testing.T) {
		mockService := mocks.NewOrderServiceMock()
		router := setupOrderTestRouter(mockService)

		mockService.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, apperrors.ErrCapacityExceeded).Once()

		req := createJSONHTTPRequest("POST", "/api/v1/orders", createOrderRequest)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - ErrUnsupportedQuantity", func(t *testing.T) {
		mockService := mocks.NewOrderServiceMock()
		router := setupOrderTestRouter(mockService)

		mockService.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, apperrors.ErrUnsupportedQuantity).Once()

		req := createJSONHTTPRequest("POST", "/api/v1/orders", createOrderRequest)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - BindingError", func(t *testing.T) {
		mockService := mocks.NewOrderServiceMock()
		router := setupOrderTestRouter(mockService)

		req := createJSONHTTPRequest("POST", "/api/v1/orders", InvalidJSON)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "CreateOrder")
	})
}

func TestGetOrder(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := mocks.NewOrderServiceMock()
		router := setupOrderTestRouter(mockService)

		order := pendingOrder()
		mockService.On("GetByOrderID", mock.Anything, order.OrderID).Return(order, nil).Once()

		req := createJSONHTTPRequest("GET", "/api/v1/orders/"+order.OrderID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - NotFound", func(t *testing.T) {
		mockService := mocks.NewOrderServiceMock()
		router := setupOrderTestRouter(mockService)

		orderID := uuid.New()
		mockService.On("GetByOrderID", mock.Anything, orderID).Return(nil, apperrors.ErrOrderNotFound).Once()

		req := createJSONHTTPRequest("GET", "/api/v1/orders/"+orderID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Failed - InvalidUUID", func(t *testing.T) {
		mockService := mocks.NewOrderServiceMock()
		router := setupOrderTestRouter(mockService)

		req := createJSONHTTPRequest("GET", "/api/v1/orders/not-a-uuid", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "GetByOrderID")
	})
}

func TestInitiateRefund(t *testing.T) {
	t.Run("Success - no requested amount", func(t *testing.T) {
		mockService := mocks.NewOrderServiceMock()
		router := setupOrderTestRouter(mockService)

		order := pendingOrder()
		order.Status = model.OrderStatusRefundPending
		mockService.On("InitiateRefund", mock.Anything, order.OrderID, (*decimal.Decimal)(nil)).Return(order, nil).Once()

		req := createJSONHTTPRequest("POST", "/api/v1/orders/"+order.OrderID.String()+"/refund", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - partial refund rejected", func(t *testing.T) {
		mockService := mocks.NewOrderServiceMock()
		router := setupOrderTestRouter(mockService)

		orderID := uuid.New()
		mockService.On("InitiateRefund", mock.Anything, orderID, mock.Anything).Return(nil, apperrors.ErrPolicyViolation).Once()

		body := map[string]interface{}{"requested_amount": "199"}
		req := createJSONHTTPRequest("POST", "/api/v1/orders/"+orderID.String()+"/refund", body)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - not paid", func(t *testing.T) {
		mockService := mocks.NewOrderServiceMock()
		router := setupOrderTestRouter(mockService)

		orderID := uuid.New()
		mockService.On("InitiateRefund", mock.Anything, orderID, (*decimal.Decimal)(nil)).Return(nil, apperrors.ErrPolicyViolation).Once()

		req := createJSONHTTPRequest("POST", "/api/v1/orders/"+orderID.String()+"/refund", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestCancelOrder(t *testing.T) {
	t.Run("Failed - already paid", func(t *testing.T) {
		mockService := mocks.NewOrderServiceMock()
		router := setupOrderTestRouter(mockService)

		orderID := uuid.New()
		mockService.On("CancelOrder", mock.Anything, orderID).Return(nil, apperrors.ErrOrderStatusConflict).Once()

		req := createJSONHTTPRequest("POST", "/api/v1/orders/"+orderID.String()+"/cancel", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}
