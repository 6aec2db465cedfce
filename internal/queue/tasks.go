package queue

import (
	"encoding/json"
	"fmt"

	"github.com/mercato-next/internal/constants"

	"github.com/hibiken/asynq"
)

// TaskItemCartReconcile 商品不可售后清理购物车
const TaskItemCartReconcile = constants.TaskItemCartReconcile

// CartReconcilePayload 购物车清理任务载荷
type CartReconcilePayload struct {
	ItemID uint `json:"item_id"`
}

// NewCartReconcileTask 创建购物车清理任务
func NewCartReconcileTask(payload CartReconcilePayload) (*asynq.Task, error) {
	if payload.ItemID == 0 {
		return nil, fmt.Errorf("item id is required")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskItemCartReconcile, body), nil
}

// ParseCartReconcilePayload 解析购物车清理任务载荷
func ParseCartReconcilePayload(task *asynq.Task) (CartReconcilePayload, error) {
	var payload CartReconcilePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, err
	}
	if payload.ItemID == 0 {
		return payload, fmt.Errorf("item id is required")
	}
	return payload, nil
}
