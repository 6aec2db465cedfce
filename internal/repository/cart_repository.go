package repository

import (
	"errors"

	"github.com/mercato-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository 购物车数据访问接口
type CartRepository interface {
	GetByID(id uint) (*models.Cart, error)
	GetByCustomer(customerID uint) (*models.Cart, error)
	GetByCustomerForUpdate(customerID uint) (*models.Cart, error)
	GetByIDAndCustomer(id, customerID uint) (*models.Cart, error)
	Create(cart *models.Cart) error
	Delete(id uint) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormCartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) *GormCartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// Transaction 在事务中执行
func (r *GormCartRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// withLines 预加载购物车项及其商品详情，按加入顺序排列
func withLines(db *gorm.DB) *gorm.DB {
	return db.Preload("CartItems", func(q *gorm.DB) *gorm.DB {
		return q.Order("cart_items.id ASC")
	}).Preload("CartItems.Item", func(q *gorm.DB) *gorm.DB {
		return q.Unscoped()
	})
}

func firstCart(query *gorm.DB) (*models.Cart, error) {
	var cart models.Cart
	if err := query.First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

// GetByID 根据 ID 获取购物车（含购物车项与商品）
func (r *GormCartRepository) GetByID(id uint) (*models.Cart, error) {
	return firstCart(withLines(r.db).Where("id = ?", id))
}

// GetByCustomer 获取顾客购物车（含购物车项与商品）
func (r *GormCartRepository) GetByCustomer(customerID uint) (*models.Cart, error) {
	return firstCart(withLines(r.db).Where("customer_id = ?", customerID))
}

// GetByCustomerForUpdate 事务内锁定顾客购物车行（SQLite 忽略行锁）
func (r *GormCartRepository) GetByCustomerForUpdate(customerID uint) (*models.Cart, error) {
	query := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("customer_id = ?", customerID)
	return firstCart(withLines(query))
}

// GetByIDAndCustomer 按 ID 与归属顾客获取购物车
func (r *GormCartRepository) GetByIDAndCustomer(id, customerID uint) (*models.Cart, error) {
	return firstCart(withLines(r.db).Where("id = ? AND customer_id = ?", id, customerID))
}

// Create 创建购物车
func (r *GormCartRepository) Create(cart *models.Cart) error {
	return r.db.Omit(clause.Associations).Create(cart).Error
}

// Delete 删除购物车及其购物车项
func (r *GormCartRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	if err := NewCartItemRepository(r.db).DeleteByCart(id); err != nil {
		return err
	}
	return r.db.Delete(&models.Cart{}, id).Error
}
