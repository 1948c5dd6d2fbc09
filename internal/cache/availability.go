package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrAvailabilityMiss 快照不在 Redis 中，呼叫方應回退到資料庫
var ErrAvailabilityMiss = errors.New("availability snapshot not cached")

// snapshotTTL 快照存活時間。快照只是展示用途，過期就回源，不需要主動失效掃描。
const snapshotTTL = 30 * time.Second

// AvailabilitySnapshot 剩餘可售數量的讀側快照。
// 權威數據永遠是資料庫的 current_quantity / max_quantity，
// 這份快照只給列表頁面降載用，保留與釋放絕不經過它。
type AvailabilitySnapshot struct {
	Remaining int
	Unlimited bool
}

type AvailabilityCache interface {
	// 更新：庫存異動後刷新快照（best-effort，失敗只記 log）
	Refresh(ctx context.Context, ticketTypeID int, snapshot AvailabilitySnapshot) error
	// 獲取：讀取快照，未命中回 ErrAvailabilityMiss
	Get(ctx context.Context, ticketTypeID int) (AvailabilitySnapshot, error)
	// 失效：票種下架或刪除時移除快照
	Invalidate(ctx context.Context, ticketTypeID int) error
}

type AvailabilityCacheImpl struct {
	client *redis.Client
}

func NewAvailabilityCache(client *redis.Client) AvailabilityCache {
	return &AvailabilityCacheImpl{
		client: client,
	}
}

func (c *AvailabilityCacheImpl) getKey(ticketTypeID int) string {
	return fmt.Sprintf("tickettype:%d:availability", ticketTypeID)
}

func (c *AvailabilityCacheImpl) Refresh(ctx context.Context, ticketTypeID int, snapshot AvailabilitySnapshot) error {
	key := c.getKey(ticketTypeID)

	unlimited := 0
	if snapshot.Unlimited {
		unlimited = 1
	}

	if err := c.client.HSet(ctx, key,
		"remaining", snapshot.Remaining,
		"unlimited", unlimited,
	).Err(); err != nil {
		return err
	}

	return c.client.Expire(ctx, key, snapshotTTL).Err()
}

func (c *AvailabilityCacheImpl) Get(ctx context.Context, ticketTypeID int) (AvailabilitySnapshot, error) {
	key := c.getKey(ticketTypeID)

	result, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		return AvailabilitySnapshot{}, err
	}

	// HGetAll 對不存在的 key 回空 map，不回 redis.Nil
	if len(result) == 0 {
		return AvailabilitySnapshot{}, ErrAvailabilityMiss
	}

	remaining, err := strconv.Atoi(result["remaining"])
	if err != nil {
		return AvailabilitySnapshot{}, fmt.Errorf("invalid remaining: %v", err)
	}

	unlimited, err := strconv.Atoi(result["unlimited"])
	if err != nil {
		return AvailabilitySnapshot{}, fmt.Errorf("invalid unlimited: %v", err)
	}

	return AvailabilitySnapshot{
		Remaining: remaining,
		Unlimited: unlimited == 1,
	}, nil
}

func (c *AvailabilityCacheImpl) Invalidate(ctx context.Context, ticketTypeID int) error {
	return c.client.Del(ctx, c.getKey(ticketTypeID)).Err()
}
