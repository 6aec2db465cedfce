package repository

import (
	"github.com/mercato-next/internal/models"

	"gorm.io/gorm"
)

// CartItemRepository 购物车项数据访问接口
type CartItemRepository interface {
	Create(line *models.CartItem) error
	DecreaseQuantity(id uint, quantity int) (bool, error)
	DeleteWithQuantity(id uint, quantity int) (bool, error)
	ListCustomerIDsByItem(itemID uint) ([]uint, error)
	DeleteByItem(itemID uint) (int64, error)
	DeleteByCart(cartID uint) error
	WithTx(tx *gorm.DB) *GormCartItemRepository
}

// GormCartItemRepository GORM 实现
type GormCartItemRepository struct {
	db *gorm.DB
}

// NewCartItemRepository 创建购物车项仓库
func NewCartItemRepository(db *gorm.DB) *GormCartItemRepository {
	return &GormCartItemRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartItemRepository) WithTx(tx *gorm.DB) *GormCartItemRepository {
	if tx == nil {
		return r
	}
	return &GormCartItemRepository{db: tx}
}

// Create 新增购物车项
func (r *GormCartItemRepository) Create(line *models.CartItem) error {
	return r.db.Omit("Item").Create(line).Error
}

// DecreaseQuantity 条件扣减数量，扣减后数量必须仍大于 0，否则返回 false
func (r *GormCartItemRepository) DecreaseQuantity(id uint, quantity int) (bool, error) {
	if id == 0 || quantity <= 0 {
		return false, nil
	}
	result := r.db.Model(&models.CartItem{}).
		Where("id = ? AND quantity > ?", id, quantity).
		Update("quantity", gorm.Expr("quantity - ?", quantity))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteWithQuantity 数量恰好等于 quantity 时删除购物车项，数量已变化时返回 false
func (r *GormCartItemRepository) DeleteWithQuantity(id uint, quantity int) (bool, error) {
	if id == 0 || quantity <= 0 {
		return false, nil
	}
	result := r.db.Where("id = ? AND quantity = ?", id, quantity).Delete(&models.CartItem{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListCustomerIDsByItem 获取购物车中含有指定商品的顾客ID
func (r *GormCartItemRepository) ListCustomerIDsByItem(itemID uint) ([]uint, error) {
	ids := make([]uint, 0)
	if err := r.db.Model(&models.CartItem{}).
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("cart_items.item_id = ?", itemID).
		Distinct().
		Pluck("carts.customer_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// DeleteByItem 删除所有引用指定商品的购物车项
func (r *GormCartItemRepository) DeleteByItem(itemID uint) (int64, error) {
	result := r.db.Where("item_id = ?", itemID).Delete(&models.CartItem{})
	return result.RowsAffected, result.Error
}

// DeleteByCart 删除购物车下的全部购物车项
func (r *GormCartItemRepository) DeleteByCart(cartID uint) error {
	return r.db.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}
