package worker

import (
	"context"

	"github.com/mercato-next/internal/logger"
	"github.com/mercato-next/internal/provider"
	"github.com/mercato-next/internal/queue"

	"github.com/hibiken/asynq"
)

// CartReconciler 清理引用不可售商品的购物车项
type CartReconciler interface {
	ReconcileItem(ctx context.Context, itemID uint) (int64, error)
}

// Consumer 异步任务消费者
type Consumer struct {
	carts CartReconciler
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	consumer := &Consumer{}
	if c != nil && c.CartService != nil {
		consumer.carts = c.CartService
	}
	return consumer
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskItemCartReconcile, c.handleCartReconcile)
}

func (c *Consumer) handleCartReconcile(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_cart_reconcile_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseCartReconcilePayload(task)
	if err != nil {
		// 载荷损坏重试无意义
		logger.Warnw("worker_cart_reconcile_invalid_payload", "error", err)
		return asynq.SkipRetry
	}
	if c.carts == nil {
		logger.Warnw("worker_cart_reconcile_skip_service_nil", "item_id", payload.ItemID)
		return nil
	}
	removed, err := c.carts.ReconcileItem(ctx, payload.ItemID)
	if err != nil {
		logger.Warnw("worker_cart_reconcile_failed", "item_id", payload.ItemID, "error", err)
		return err
	}
	logger.Infow("worker_cart_reconcile_done", "item_id", payload.ItemID, "removed_lines", removed)
	return nil
}
