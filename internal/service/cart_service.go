package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/mercato-next/internal/cache"
	"github.com/mercato-next/internal/logger"
	"github.com/mercato-next/internal/models"
	"github.com/mercato-next/internal/repository"

	"gorm.io/gorm"
)

// errCartCreateRace 并发创建同一顾客购物车，重试一次即可读到对方创建的购物车
var errCartCreateRace = errors.New("cart created concurrently")

// CustomerContext 已认证顾客（由顾客鉴权中间件写入请求上下文）
type CustomerContext struct {
	ID    uint
	Email string
}

// CartItemInput 加入/移出购物车的输入
type CartItemInput struct {
	ItemID   uint
	Quantity int
}

// CartOptions 购物车服务参数
type CartOptions struct {
	CacheTTL        time.Duration
	MaxLineQuantity int
}

// CartService 购物车服务
type CartService struct {
	cartRepo     repository.CartRepository
	cartItemRepo repository.CartItemRepository
	itemRepo     repository.ItemRepository
	opts         CartOptions
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, cartItemRepo repository.CartItemRepository, itemRepo repository.ItemRepository, opts CartOptions) *CartService {
	return &CartService{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		itemRepo:     itemRepo,
		opts:         opts,
	}
}

// AddItem 将商品加入顾客购物车，购物车不存在时自动创建。
// 只校验库存不占用库存；同一商品已在购物车中时拒绝。
func (s *CartService) AddItem(ctx context.Context, customer CustomerContext, input CartItemInput) (*models.Cart, error) {
	cart, err := s.addItem(customer, input)
	if errors.Is(err, errCartCreateRace) {
		cart, err = s.addItem(customer, input)
	}
	if err != nil {
		return nil, wrapError(err, http.StatusBadRequest, MsgAddItemFailed)
	}
	s.invalidate(ctx, customer.ID)
	return cart, nil
}

func (s *CartService) addItem(customer CustomerContext, input CartItemInput) (*models.Cart, error) {
	if err := s.validateInput(customer, input); err != nil {
		return nil, err
	}

	var cartID uint
	err := s.cartRepo.Transaction(func(tx *gorm.DB) error {
		item, err := s.itemRepo.WithTx(tx).GetByID(input.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return newError(http.StatusNotFound, ErrItemNotFound)
		}
		if input.Quantity > item.Stock || !item.IsAvailable() {
			return newError(http.StatusBadRequest, ErrItemNotAvailable)
		}

		carts := s.cartRepo.WithTx(tx)
		cart, err := carts.GetByCustomerForUpdate(customer.ID)
		if err != nil {
			return err
		}
		if cart == nil {
			cart = &models.Cart{CustomerID: customer.ID}
			if err := carts.Create(cart); err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return errCartCreateRace
				}
				return err
			}
		}
		if cart.FindItem(item.ID) != nil {
			return newError(http.StatusBadRequest, ErrItemAlreadyInCart)
		}

		line := &models.CartItem{CartID: cart.ID, ItemID: item.ID, Quantity: input.Quantity}
		if err := s.cartItemRepo.WithTx(tx).Create(line); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return newError(http.StatusBadRequest, ErrItemAlreadyInCart)
			}
			return err
		}
		cartID = cart.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.reload(cartID)
}

// RemoveItem 从顾客购物车扣减商品数量，归零时删除购物车项
func (s *CartService) RemoveItem(ctx context.Context, customer CustomerContext, input CartItemInput) (*models.Cart, error) {
	cart, err := s.removeItem(customer, input)
	if err != nil {
		return nil, wrapError(err, http.StatusBadRequest, MsgRemoveItemFailed)
	}
	s.invalidate(ctx, customer.ID)
	return cart, nil
}

func (s *CartService) removeItem(customer CustomerContext, input CartItemInput) (*models.Cart, error) {
	if err := s.validateInput(customer, input); err != nil {
		return nil, err
	}

	var cartID uint
	err := s.cartRepo.Transaction(func(tx *gorm.DB) error {
		item, err := s.itemRepo.WithTx(tx).GetByID(input.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return newError(http.StatusNotFound, ErrItemNotFound)
		}

		cart, err := s.cartRepo.WithTx(tx).GetByCustomerForUpdate(customer.ID)
		if err != nil {
			return err
		}
		if cart == nil {
			return newError(http.StatusBadRequest, ErrCartNotFound)
		}
		line := cart.FindItem(item.ID)
		if line == nil {
			return newError(http.StatusBadRequest, ErrItemNotInCart)
		}
		if input.Quantity > line.Quantity {
			return newError(http.StatusBadRequest, ErrRemoveQuantityExceeded)
		}

		lines := s.cartItemRepo.WithTx(tx)
		var applied bool
		if line.Quantity == input.Quantity {
			applied, err = lines.DeleteWithQuantity(line.ID, input.Quantity)
		} else {
			applied, err = lines.DecreaseQuantity(line.ID, input.Quantity)
		}
		if err != nil {
			return err
		}
		if !applied {
			return newError(http.StatusBadRequest, ErrRemoveQuantityExceeded)
		}
		cartID = cart.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.reload(cartID)
}

// FindOne 按 ID 获取购物车（含购物车项与商品）
func (s *CartService) FindOne(ctx context.Context, id uint) (*models.Cart, error) {
	cart, err := s.cartRepo.GetByID(id)
	if err != nil {
		return nil, wrapError(err, http.StatusInternalServerError, MsgFindCartFailed)
	}
	if cart == nil {
		return nil, wrapError(newError(http.StatusNotFound, ErrCartNotFound), http.StatusNotFound, MsgFindCartFailed)
	}
	return cart, nil
}

// MyCart 获取当前顾客的购物车，优先读取缓存快照
func (s *CartService) MyCart(ctx context.Context, customer CustomerContext) (*models.Cart, error) {
	if customer.ID == 0 {
		return nil, wrapError(newError(http.StatusUnauthorized, ErrCustomerRequired), http.StatusUnauthorized, MsgFindCartFailed)
	}
	cached, generation, hit, cacheErr := cache.GetCartSnapshot(ctx, customer.ID)
	if cacheErr != nil {
		logger.Warnw("cart_snapshot_read_failed", "customer_id", customer.ID, "error", cacheErr)
	} else if hit {
		return cached, nil
	}

	cart, err := s.cartRepo.GetByCustomer(customer.ID)
	if err != nil {
		return nil, wrapError(err, http.StatusInternalServerError, MsgFindCartFailed)
	}
	if cart == nil {
		return nil, wrapError(newError(http.StatusNotFound, ErrCartNotFound), http.StatusNotFound, MsgFindCartFailed)
	}
	// 代数未知时不回填
	if cacheErr != nil {
		return cart, nil
	}
	if err := cache.SetCartSnapshot(ctx, cart, generation, s.opts.CacheTTL); err != nil {
		logger.Warnw("cart_snapshot_write_failed", "customer_id", customer.ID, "error", err)
	}
	return cart, nil
}

// DeleteCart 删除顾客自己的购物车，返回删除前的快照。
// 购物车不属于该顾客时与不存在同样处理。
func (s *CartService) DeleteCart(ctx context.Context, customer CustomerContext, id uint) (*models.Cart, error) {
	var deleted *models.Cart
	err := s.cartRepo.Transaction(func(tx *gorm.DB) error {
		carts := s.cartRepo.WithTx(tx)
		cart, err := carts.GetByIDAndCustomer(id, customer.ID)
		if err != nil {
			return err
		}
		if cart == nil {
			return newError(http.StatusBadRequest, ErrCartNotFound)
		}
		if err := carts.Delete(cart.ID); err != nil {
			return err
		}
		deleted = cart
		return nil
	})
	if err != nil {
		return nil, wrapError(err, http.StatusBadRequest, MsgDeleteCartFailed)
	}
	s.invalidate(ctx, customer.ID)
	return deleted, nil
}

// ReconcileItem 商品下架或删除后移除所有购物车中的该商品，返回移除的购物车项数量
func (s *CartService) ReconcileItem(ctx context.Context, itemID uint) (int64, error) {
	if itemID == 0 {
		return 0, ErrInvalidItem
	}
	var (
		removed   int64
		customers []uint
	)
	err := s.cartRepo.Transaction(func(tx *gorm.DB) error {
		item, err := s.itemRepo.WithTx(tx).GetByID(itemID)
		if err != nil {
			return err
		}
		if item.IsAvailable() {
			return nil
		}
		lines := s.cartItemRepo.WithTx(tx)
		customers, err = lines.ListCustomerIDsByItem(itemID)
		if err != nil {
			return err
		}
		removed, err = lines.DeleteByItem(itemID)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx, customers...)
	return removed, nil
}

func (s *CartService) validateInput(customer CustomerContext, input CartItemInput) error {
	if customer.ID == 0 {
		return newError(http.StatusUnauthorized, ErrCustomerRequired)
	}
	if input.ItemID == 0 || input.Quantity <= 0 {
		return newError(http.StatusBadRequest, ErrInvalidCartItem)
	}
	if s.opts.MaxLineQuantity > 0 && input.Quantity > s.opts.MaxLineQuantity {
		return newError(http.StatusBadRequest, ErrInvalidCartItem)
	}
	return nil
}

func (s *CartService) reload(cartID uint) (*models.Cart, error) {
	cart, err := s.cartRepo.GetByID(cartID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, newError(http.StatusNotFound, ErrCartNotFound)
	}
	return cart, nil
}

func (s *CartService) invalidate(ctx context.Context, customerIDs ...uint) {
	if len(customerIDs) == 0 {
		return
	}
	if err := cache.InvalidateCartSnapshots(ctx, customerIDs...); err != nil {
		logger.Warnw("cart_snapshot_invalidate_failed", "customer_ids", customerIDs, "error", err)
	}
}
