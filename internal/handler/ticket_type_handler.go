package handler

import (
	"net/http"

	"github.com/hackathonweekly/ticketing/internal/model"
	"github.com/hackathonweekly/ticketing/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type TicketTypeHandler struct {
	service service.TicketTypeService
}

func NewTicketTypeHandler(service service.TicketTypeService) *TicketTypeHandler {
	return &TicketTypeHandler{service: service}
}

func (h *TicketTypeHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("ticket-types", h.List)
		router.GET("ticket-types/:uuid", h.Get)
		router.POST("ticket-types", h.Create)
		router.PUT("ticket-types/:uuid", h.Update)
		router.DELETE("ticket-types/:uuid", h.Delete)
	}
}

// PriceTierRequest 套票階層：quantity 是精確匹配鍵，price 是整組總價
type PriceTierRequest struct {
	Quantity  int             `json:"quantity" binding:"required,min=2"`
	Price     decimal.Decimal `json:"price" binding:"required"`
	Currency  string          `json:"currency"`
	SortOrder int             `json:"sort_order"`
}

// CreateTicketTypeRequest 建立票種請求。max_quantity 省略表示無上限
type CreateTicketTypeRequest struct {
	EventID     int                `json:"event_id" binding:"required"`
	Name        string             `json:"name" binding:"required"`
	BasePrice   decimal.Decimal    `json:"base_price" binding:"required"`
	Currency    string             `json:"currency"`
	MaxQuantity *int               `json:"max_quantity" binding:"omitempty,min=0"`
	IsActive    bool               `json:"is_active"`
	SortOrder   int                `json:"sort_order"`
	PriceTiers  []PriceTierRequest `json:"price_tiers"`
}

// UpdateTicketTypeRequest 更新票種請求；price_tiers 非 nil 時整組替換
type UpdateTicketTypeRequest struct {
	Name        *string            `json:"name"`
	BasePrice   *decimal.Decimal   `json:"base_price"`
	Currency    *string            `json:"currency"`
	MaxQuantity *int               `json:"max_quantity"`
	IsActive    *bool              `json:"is_active"`
	SortOrder   *int               `json:"sort_order"`
	PriceTiers  []PriceTierRequest `json:"price_tiers"`
}

func toPriceTiers(reqs []PriceTierRequest) []model.PriceTier {
	if reqs == nil {
		return nil
	}
	tiers := make([]model.PriceTier, 0, len(reqs))
	for _, req := range reqs {
		tiers = append(tiers, model.PriceTier{
			Quantity:  req.Quantity,
			Price:     req.Price,
			Currency:  req.Currency,
			SortOrder: req.SortOrder,
		})
	}
	return tiers
}

func (h *TicketTypeHandler) List(c *gin.Context) {
	ticketTypes, err := h.service.List(c)
	if err != nil {
		handleError(c, err, "ticket_type_handler", "List")
		return
	}
	c.JSON(http.StatusOK, ticketTypes)
}

func (h *TicketTypeHandler) Get(c *gin.Context) {
	ticketTypeID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}

	ticketType, err := h.service.GetByTicketTypeID(c, ticketTypeID)
	if err != nil {
		handleError(c, err, "ticket_type_handler", "Get")
		return
	}
	c.JSON(http.StatusOK, ticketType)
}

func (h *TicketTypeHandler) Create(c *gin.Context) {
	var req CreateTicketTypeRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	ticketType := &model.TicketType{
		EventID:     req.EventID,
		Name:        req.Name,
		BasePrice:   req.BasePrice,
		Currency:    req.Currency,
		MaxQuantity: req.MaxQuantity,
		IsActive:    req.IsActive,
		SortOrder:   req.SortOrder,
		PriceTiers:  toPriceTiers(req.PriceTiers),
	}

	created, err := h.service.Create(c, ticketType)
	if err != nil {
		handleError(c, err, "ticket_type_handler", "Create")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *TicketTypeHandler) Update(c *gin.Context) {
	ticketTypeID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}

	var req UpdateTicketTypeRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	params := model.UpdateTicketTypeParams{
		Name:        req.Name,
		BasePrice:   req.BasePrice,
		Currency:    req.Currency,
		MaxQuantity: req.MaxQuantity,
		IsActive:    req.IsActive,
		SortOrder:   req.SortOrder,
	}

	updated, err := h.service.UpdateByTicketTypeID(c, ticketTypeID, params, toPriceTiers(req.PriceTiers))
	if err != nil {
		handleError(c, err, "ticket_type_handler", "Update")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *TicketTypeHandler) Delete(c *gin.Context) {
	ticketTypeID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}

	if err := h.service.DeleteByTicketTypeID(c, ticketTypeID); err != nil {
		handleError(c, err, "ticket_type_handler", "Delete")
		return
	}
	c.Status(http.StatusNoContent)
}
