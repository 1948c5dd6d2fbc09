package handler

import (
	"net/http"

	"github.com/hackathonweekly/ticketing/internal/model"
	"github.com/hackathonweekly/ticketing/internal/service"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	service service.OrderService
}

func NewOrderHandler(service service.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

func (h *OrderHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("orders", h.GetOrders)
		router.GET("orders/:uuid", h.GetOrder)
		router.POST("orders", h.CreateOrder)
		router.POST("orders/:uuid/cancel", h.CancelOrder)
		router.POST("orders/:uuid/refund", h.InitiateRefund)
	}
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var orderReq model.CreateOrderRequest

	if err := BindJson(c, &orderReq); err != nil {
		return
	}

	created, err := h.service.CreateOrder(c, orderReq)
	if err != nil {
		handleError(c, err, "order_handler", "CreateOrder")
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *OrderHandler) GetOrders(c *gin.Context) {
	orders, err := h.service.OrderList(c)
	if err != nil {
		handleError(c, err, "order_handler", "GetOrders")
		return
	}

	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}

	order, err := h.service.GetByOrderID(c, orderID)
	if err != nil {
		handleError(c, err, "order_handler", "GetOrder")
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	orderID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}

	order, err := h.service.CancelOrder(c, orderID)
	if err != nil {
		handleError(c, err, "order_handler", "CancelOrder")
		return
	}

	c.JSON(http.StatusOK, order)
}

// InitiateRefund 主辦方發起退款。requested_amount 可省略；
// 帶了就必須等於訂單總額，任何部分退款都會被政策擋下。
func (h *OrderHandler) InitiateRefund(c *gin.Context) {
	orderID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}

	// body 可省略（全額退款不需要指定金額）
	var req model.RefundRequest
	if c.Request.ContentLength > 0 {
		if err := BindJson(c, &req); err != nil {
			return
		}
	}

	order, err := h.service.InitiateRefund(c, orderID, req.RequestedAmount)
	if err != nil {
		handleError(c, err, "order_handler", "InitiateRefund")
		return
	}

	c.JSON(http.StatusOK, order)
}
