package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/hackathonweekly/ticketing/config"
	"github.com/hackathonweekly/ticketing/internal/service"
	"github.com/hackathonweekly/ticketing/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CronHandler 批次觸發入口。排程節奏由外部 scheduler 控制，
// 這裡只驗證共享密鑰並跑一次掃描。
type CronHandler struct {
	sweeper service.SweeperService
	server  config.ServerConfig
	cron    config.CronConfig
}

func NewCronHandler(sweeper service.SweeperService, server config.ServerConfig, cron config.CronConfig) *CronHandler {
	return &CronHandler{
		sweeper: sweeper,
		server:  server,
		cron:    cron,
	}
}

func (h *CronHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/cron")
	{
		router.POST("cancel-expired-orders", h.CancelExpiredOrders)
	}
}

func (h *CronHandler) CancelExpiredOrders(c *gin.Context) {
	if !h.authorized(c) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "unauthorized",
		})
		return
	}

	result, err := h.sweeper.SweepExpiredOrders(c, time.Now().UTC())
	if err != nil {
		logger.WithComponent("cron_handler").Error("sweep failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// authorized 驗證共享密鑰：x-cron-secret header 或 bearer token。
// production 下沒配置密鑰視為硬性失敗（拒絕所有呼叫），不退化成開放端點；
// 非 production 下未配置密鑰放行，方便本地測試。
func (h *CronHandler) authorized(c *gin.Context) bool {
	if h.cron.Secret == "" {
		return !h.server.IsProduction()
	}

	provided := c.GetHeader("x-cron-secret")
	if provided == "" {
		auth := c.GetHeader("Authorization")
		if strings.HasPrefix(auth, "Bearer ") {
			provided = strings.TrimPrefix(auth, "Bearer ")
		}
	}

	if provided == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(provided), []byte(h.cron.Secret)) == 1
}
