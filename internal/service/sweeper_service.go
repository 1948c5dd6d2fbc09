package service

import (
	"context"
	"time"

	"github.com/hackathonweekly/ticketing/internal/metrics"
	"github.com/hackathonweekly/ticketing/internal/repository"
	"github.com/hackathonweekly/ticketing/pkg/logger"

	"go.uber.org/zap"
)

// SweepResult 單次掃描的逐單成敗統計
type SweepResult struct {
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// SweeperService 回收付款窗口已過的待付款訂單。沒有自己的計時器：
// 排程由外部（cron 端點）觸發，now 由呼叫方傳入，所以不會自己對自己重複開火；
// 重複觸發也安全——已終止的訂單會被狀態守衛擋掉。
type SweeperService interface {
	SweepExpiredOrders(ctx context.Context, now time.Time) (SweepResult, error)
}

type SweeperServiceImpl struct {
	orderRepo    repository.OrderRepository
	orderService OrderService
	batchSize    int
	log          *zap.Logger
}

func NewSweeperService(orderRepository repository.OrderRepository, orderService OrderService, batchSize int) SweeperService {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &SweeperServiceImpl{
		orderRepo:    orderRepository,
		orderService: orderService,
		batchSize:    batchSize,
		log:          logger.WithComponent("sweeper"),
	}
}

func (s *SweeperServiceImpl) SweepExpiredOrders(ctx context.Context, now time.Time) (SweepResult, error) {
	var result SweepResult
	afterID := 0

	for {
		batch, err := s.orderRepo.ListExpiredPending(ctx, now, afterID, s.batchSize)
		if err != nil {
			return result, err
		}
		if len(batch) == 0 {
			break
		}

		for _, order := range batch {
			result.Processed++

			// 逐單獨立交易：一張單失敗不拖垮整批
			if err := s.orderService.ExpireOrder(ctx, order.ID, now); err != nil {
				result.Failed++
				metrics.OrderSwept("failed")
				s.log.Warn("failed to expire order",
					zap.Int("order_id", order.ID),
					zap.String("order_uuid", order.OrderID.String()),
					zap.Error(err))
				continue
			}

			result.Succeeded++
			metrics.OrderSwept("succeeded")
		}

		// keyset 前進，處理失敗的單不會在同一輪被重讀
		afterID = batch[len(batch)-1].ID

		if len(batch) < s.batchSize {
			break
		}
	}

	s.log.Info("sweep completed",
		zap.Int("processed", result.Processed),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed))

	return result, nil
}
