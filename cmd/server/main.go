package main

import (
	"log"

	"github.com/hackathonweekly/ticketing/config"
	"github.com/hackathonweekly/ticketing/internal/cache"
	"github.com/hackathonweekly/ticketing/internal/database"
	"github.com/hackathonweekly/ticketing/internal/handler"
	"github.com/hackathonweekly/ticketing/internal/repository"
	"github.com/hackathonweekly/ticketing/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.LoadConfig()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer pool.Close()

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	defer rdb.Close()

	// repositories
	ticketTypeRepo := repository.NewTicketTypeRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	registrationRepo := repository.NewRegistrationRepository(pool)

	// cache & services
	availability := cache.NewAvailabilityCache(rdb)
	ticketTypeService := service.NewTicketTypeService(ticketTypeRepo, availability)
	orderService := service.NewOrderService(pool, orderRepo, ticketTypeRepo, registrationRepo, availability, cfg.Order)
	registrationService := service.NewRegistrationService(pool, registrationRepo, orderRepo, orderService)
	sweeperService := service.NewSweeperService(orderRepo, orderService, cfg.Order.SweepBatchSize)

	router := gin.Default()
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler.NewTicketTypeHandler(ticketTypeService).RegisterRoutes(router)
	handler.NewOrderHandler(orderService).RegisterRoutes(router)
	handler.NewPaymentHandler(orderService).RegisterRoutes(router)
	handler.NewRegistrationHandler(registrationService).RegisterRoutes(router)
	handler.NewCronHandler(sweeperService, cfg.Server, cfg.Cron).RegisterRoutes(router)

	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
