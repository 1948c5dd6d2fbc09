package handler

import (
	"net/http"

	"github.com/hackathonweekly/ticketing/internal/model"
	"github.com/hackathonweekly/ticketing/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentHandler 金流回調入口。回調的真偽驗證在外層閘道完成，
// 這裡假定 paid / failed / refunded 是可信訊號，只負責推進狀態機。
type PaymentHandler struct {
	service service.OrderService
}

func NewPaymentHandler(service service.OrderService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

func (h *PaymentHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("payments/callback", h.Callback)
	}
}

type PaymentCallbackRequest struct {
	OrderID uuid.UUID `json:"order_id" binding:"required"`
	Status  string    `json:"status" binding:"required,oneof=paid failed refunded"`
}

func (h *PaymentHandler) Callback(c *gin.Context) {
	var req PaymentCallbackRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	var (
		order *model.Order
		err   error
	)

	switch req.Status {
	case "paid":
		order, err = h.service.ConfirmPayment(c, req.OrderID)
	case "failed":
		order, err = h.service.FailPayment(c, req.OrderID)
	case "refunded":
		order, err = h.service.ConfirmRefund(c, req.OrderID)
	}

	if err != nil {
		handleError(c, err, "payment_handler", "Callback")
		return
	}

	c.JSON(http.StatusOK, order)
}
