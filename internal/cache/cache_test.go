package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/mercato-next/internal/config"
	"github.com/mercato-next/internal/models"

	"github.com/alicebob/miniredis/v2"
)

func startTestRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	if err != nil {
		t.Fatalf("parse miniredis port failed: %v", err)
	}
	if err := InitRedis(context.Background(), &config.RedisConfig{Enabled: true, Host: mr.Host(), Port: port, Prefix: "test"}); err != nil {
		t.Fatalf("init redis failed: %v", err)
	}
	t.Cleanup(func() { _ = Close() })
	return mr
}

func TestDisabledCacheIsNoop(t *testing.T) {
	if err := InitRedis(context.Background(), &config.RedisConfig{Enabled: false}); err != nil {
		t.Fatalf("init disabled redis failed: %v", err)
	}
	if Enabled() || Client() != nil {
		t.Fatalf("cache should be disabled")
	}

	ctx := context.Background()
	cart := &models.Cart{ID: 1, CustomerID: 9}
	if err := SetCartSnapshot(ctx, cart, 0, time.Minute); err != nil {
		t.Fatalf("set snapshot should be noop: %v", err)
	}
	got, _, hit, err := GetCartSnapshot(ctx, 9)
	if err != nil || hit || got != nil {
		t.Fatalf("expected miss, got=%v hit=%v err=%v", got, hit, err)
	}
	if err := InvalidateCartSnapshots(ctx, 9, 0, 10); err != nil {
		t.Fatalf("invalidate should be noop: %v", err)
	}
}

func TestBuildKeyUsesPrefix(t *testing.T) {
	if got := BuildKey("rate_limit:login:1.2.3.4"); got != redisPrefix+":rate_limit:login:1.2.3.4" {
		t.Fatalf("unexpected key: %s", got)
	}
	if got := buildKey("  "); got != redisPrefix {
		t.Fatalf("blank key should resolve to prefix, got %s", got)
	}
}

func TestSnapshotKeys(t *testing.T) {
	if got := cartSnapshotKey(12, 3); got != "cart:snapshot:12:3" {
		t.Fatalf("unexpected cart key: %s", got)
	}
	if got := cartGenerationKey(12); got != "cart:generation:12" {
		t.Fatalf("unexpected generation key: %s", got)
	}
	if got := customerAuthStateKey(3); got != "auth:customer:3" {
		t.Fatalf("unexpected auth key: %s", got)
	}
}

func TestBuildAdminAuthState(t *testing.T) {
	now := time.Unix(1700000000, 0)
	state := BuildAdminAuthState(&models.Admin{ID: 4, Username: "ops", TokenVersion: 2, TokenInvalidBefore: &now, IsSuper: true})
	if state.AdminID != 4 || state.TokenVersion != 2 || state.TokenInvalidBefore != 1700000000 || !state.IsSuper {
		t.Fatalf("unexpected state: %+v", state)
	}
	if BuildAdminAuthState(nil) != nil {
		t.Fatalf("nil admin should produce nil state")
	}
}

func TestCartSnapshotRoundTripAndInvalidate(t *testing.T) {
	mr := startTestRedis(t)
	ctx := context.Background()
	cart := &models.Cart{ID: 1, CustomerID: 9, CartItems: []models.CartItem{{ID: 5, CartID: 1, ItemID: 2, Quantity: 3}}}

	_, generation, hit, err := GetCartSnapshot(ctx, 9)
	if err != nil || hit || generation != 0 {
		t.Fatalf("expected cold miss at generation 0, hit=%v generation=%d err=%v", hit, generation, err)
	}
	if err := SetCartSnapshot(ctx, cart, generation, time.Minute); err != nil {
		t.Fatalf("set snapshot failed: %v", err)
	}
	got, _, hit, err := GetCartSnapshot(ctx, 9)
	if err != nil || !hit {
		t.Fatalf("expected hit, hit=%v err=%v", hit, err)
	}
	if got.ID != 1 || len(got.CartItems) != 1 || got.CartItems[0].Quantity != 3 {
		t.Fatalf("unexpected snapshot: %+v", got)
	}

	if err := InvalidateCartSnapshots(ctx, 9, 0); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}
	_, generation, hit, err = GetCartSnapshot(ctx, 9)
	if err != nil || hit || generation != 1 {
		t.Fatalf("expected miss at generation 1, hit=%v generation=%d err=%v", hit, generation, err)
	}
	if ttl := mr.TTL("test:" + cartGenerationKey(9)); ttl != cartGenerationTTL {
		t.Fatalf("generation ttl want %s got %s", cartGenerationTTL, ttl)
	}
}

func TestCartSnapshotBackfillAfterInvalidateIsIgnored(t *testing.T) {
	startTestRedis(t)
	ctx := context.Background()

	// 读取方在查询数据库前拿到代数
	_, generation, _, err := GetCartSnapshot(ctx, 9)
	if err != nil {
		t.Fatalf("get snapshot failed: %v", err)
	}
	// 并发写入提交并失效
	if err := InvalidateCartSnapshots(ctx, 9); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}
	// 读取方用旧数据回填
	stale := &models.Cart{ID: 1, CustomerID: 9}
	if err := SetCartSnapshot(ctx, stale, generation, time.Minute); err != nil {
		t.Fatalf("set snapshot failed: %v", err)
	}

	if got, _, hit, err := GetCartSnapshot(ctx, 9); err != nil || hit {
		t.Fatalf("stale backfill must not be served, got=%+v hit=%v err=%v", got, hit, err)
	}
}
