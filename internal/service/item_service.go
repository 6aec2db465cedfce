package service

import (
	"context"
	"strings"

	"github.com/mercato-next/internal/cache"
	"github.com/mercato-next/internal/logger"
	"github.com/mercato-next/internal/models"
	"github.com/mercato-next/internal/repository"
)

// CartReconcileEnqueuer 投递购物车清理任务
type CartReconcileEnqueuer interface {
	EnqueueCartReconcile(ctx context.Context, itemID uint) error
}

// ItemInput 商品写入参数
type ItemInput struct {
	Name        string
	Description string
	Price       string
	Stock       int
	Status      string
}

// ItemService 商品目录服务
type ItemService struct {
	itemRepo     repository.ItemRepository
	cartItemRepo repository.CartItemRepository
	enqueuer     CartReconcileEnqueuer
}

// NewItemService 创建商品服务
func NewItemService(itemRepo repository.ItemRepository, cartItemRepo repository.CartItemRepository, enqueuer CartReconcileEnqueuer) *ItemService {
	return &ItemService{itemRepo: itemRepo, cartItemRepo: cartItemRepo, enqueuer: enqueuer}
}

// List 商品列表
func (s *ItemService) List(filter repository.ItemListFilter) ([]models.Item, int64, error) {
	return s.itemRepo.List(filter)
}

// ListPublic 前台商品列表（仅可售）
func (s *ItemService) ListPublic(filter repository.ItemListFilter) ([]models.Item, int64, error) {
	filter.Status = models.ItemStatusAvailable
	return s.itemRepo.List(filter)
}

// Get 获取商品
func (s *ItemService) Get(id uint) (*models.Item, error) {
	item, err := s.itemRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	return item, nil
}

// Create 创建商品
func (s *ItemService) Create(input ItemInput) (*models.Item, error) {
	item := &models.Item{}
	if err := applyItemInput(item, input); err != nil {
		return nil, err
	}
	if err := s.itemRepo.Create(item); err != nil {
		return nil, err
	}
	return item, nil
}

// Update 更新商品并使含该商品的购物车快照失效；商品变为不可售时异步清理购物车
func (s *ItemService) Update(ctx context.Context, id uint, input ItemInput) (*models.Item, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	wasAvailable := item.IsAvailable()
	if err := applyItemInput(item, input); err != nil {
		return nil, err
	}
	if err := s.itemRepo.Update(item); err != nil {
		return nil, err
	}
	s.invalidateCarts(ctx, item.ID)
	if wasAvailable && !item.IsAvailable() {
		s.enqueueReconcile(ctx, item.ID)
	}
	return item, nil
}

// Delete 删除商品并异步清理购物车
func (s *ItemService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	if err := s.itemRepo.Delete(id); err != nil {
		return err
	}
	s.invalidateCarts(ctx, id)
	s.enqueueReconcile(ctx, id)
	return nil
}

// invalidateCarts 快照内嵌商品详情，商品变更后需要失效
func (s *ItemService) invalidateCarts(ctx context.Context, itemID uint) {
	if s.cartItemRepo == nil || !cache.Enabled() {
		return
	}
	customerIDs, err := s.cartItemRepo.ListCustomerIDsByItem(itemID)
	if err != nil {
		logger.Warnw("cart_snapshot_lookup_failed", "item_id", itemID, "error", err)
		return
	}
	if err := cache.InvalidateCartSnapshots(ctx, customerIDs...); err != nil {
		logger.Warnw("cart_snapshot_invalidate_failed", "item_id", itemID, "customer_ids", customerIDs, "error", err)
	}
}

func (s *ItemService) enqueueReconcile(ctx context.Context, itemID uint) {
	if s.enqueuer == nil {
		return
	}
	if err := s.enqueuer.EnqueueCartReconcile(ctx, itemID); err != nil {
		logger.Warnw("cart_reconcile_enqueue_failed", "item_id", itemID, "error", err)
	}
}

func applyItemInput(item *models.Item, input ItemInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" || input.Stock < 0 {
		return ErrInvalidItem
	}
	price, err := models.ParseMoney(input.Price)
	if err != nil {
		return ErrInvalidItem
	}
	status := strings.ToUpper(strings.TrimSpace(input.Status))
	switch status {
	case "":
		status = models.ItemStatusAvailable
	case models.ItemStatusAvailable, models.ItemStatusUnavailable:
	default:
		return ErrInvalidItem
	}

	item.Name = name
	item.Description = strings.TrimSpace(input.Description)
	item.PriceAmount = price
	item.Stock = input.Stock
	item.Status = status
	return nil
}
