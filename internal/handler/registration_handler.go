package handler

import (
	"net/http"

	"github.com/hackathonweekly/ticketing/internal/model"
	"github.com/hackathonweekly/ticketing/internal/service"

	"github.com/gin-gonic/gin"
)

type RegistrationHandler struct {
	service service.RegistrationService
}

func NewRegistrationHandler(service service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{service: service}
}

func (h *RegistrationHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("registrations", h.Create)
		router.GET("registrations/:uuid", h.Get)
		router.POST("registrations/:uuid/cancel", h.Cancel)
	}
}

func (h *RegistrationHandler) Create(c *gin.Context) {
	var req model.CreateRegistrationRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	created, err := h.service.Create(c, req)
	if err != nil {
		handleError(c, err, "registration_handler", "Create")
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *RegistrationHandler) Get(c *gin.Context) {
	registrationID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}

	registration, err := h.service.GetByRegistrationID(c, registrationID)
	if err != nil {
		handleError(c, err, "registration_handler", "Get")
		return
	}

	c.JSON(http.StatusOK, registration)
}

// Cancel 取消報名。掛著已付款或退款中訂單的報名會拿到 409，
// 必須先完成退款再取消。
func (h *RegistrationHandler) Cancel(c *gin.Context) {
	registrationID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}

	registration, err := h.service.Cancel(c, registrationID)
	if err != nil {
		handleError(c, err, "registration_handler", "Cancel")
		return
	}

	c.JSON(http.StatusOK, registration)
}
