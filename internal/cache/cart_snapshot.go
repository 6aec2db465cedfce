package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mercato-next/internal/constants"
	"github.com/mercato-next/internal/models"

	"github.com/redis/go-redis/v9"
)

// 代数键的过期时间必须长于任何快照的过期时间，代数键过期归零时旧快照已全部失效
const cartGenerationTTL = 7 * 24 * time.Hour

func cartGenerationKey(customerID uint) string {
	return fmt.Sprintf("%s:%d", constants.CacheKeyCartGeneration, customerID)
}

func cartSnapshotKey(customerID uint, generation int64) string {
	return fmt.Sprintf("%s:%d:%d", constants.CacheKeyCartSnapshot, customerID, generation)
}

// CartSnapshotGeneration 读取顾客购物车快照代数，不存在时为 0
func CartSnapshotGeneration(ctx context.Context, customerID uint) (int64, error) {
	if !Enabled() || customerID == 0 {
		return 0, nil
	}
	generation, err := redisClient.Get(ctx, buildKey(cartGenerationKey(customerID))).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return generation, err
}

// GetCartSnapshot 读取当前代数下的购物车快照。
// 未命中时返回的代数用于 SetCartSnapshot 回填。
func GetCartSnapshot(ctx context.Context, customerID uint) (*models.Cart, int64, bool, error) {
	if !Enabled() || customerID == 0 {
		return nil, 0, false, nil
	}
	generation, err := CartSnapshotGeneration(ctx, customerID)
	if err != nil {
		return nil, 0, false, err
	}
	var cart models.Cart
	hit, err := GetJSON(ctx, cartSnapshotKey(customerID, generation), &cart)
	if err != nil || !hit {
		return nil, generation, false, err
	}
	return &cart, generation, true, nil
}

// SetCartSnapshot 按读取时的代数写入快照，ttl 为 0 时不缓存。
// 读取后发生过失效时写入的是旧代数的键，不会再被读到。
func SetCartSnapshot(ctx context.Context, cart *models.Cart, generation int64, ttl time.Duration) error {
	if cart == nil || cart.CustomerID == 0 || ttl <= 0 {
		return nil
	}
	if ttl > cartGenerationTTL {
		ttl = cartGenerationTTL
	}
	return SetJSON(ctx, cartSnapshotKey(cart.CustomerID, generation), cart, ttl)
}

// InvalidateCartSnapshots 递增一个或多个顾客的购物车快照代数
func InvalidateCartSnapshots(ctx context.Context, customerIDs ...uint) error {
	if !Enabled() {
		return nil
	}
	pipe := redisClient.Pipeline()
	queued := 0
	for _, id := range customerIDs {
		if id == 0 {
			continue
		}
		key := buildKey(cartGenerationKey(id))
		pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, cartGenerationTTL)
		queued++
	}
	if queued == 0 {
		return nil
	}
	_, err := pipe.Exec(ctx)
	return err
}
