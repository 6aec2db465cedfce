package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart 购物车（每个顾客至多一个）
type Cart struct {
	ID         uint       `gorm:"primarykey" json:"id"`                                            // 主键
	CustomerID uint       `gorm:"not null;uniqueIndex" json:"customer_id"`                         // 顾客ID
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`                                         // 创建时间
	UpdatedAt  time.Time  `json:"updated_at"`                                                      // 更新时间
	CartItems  []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"cart_items"` // 购物车项
}

// TableName 指定表名
func (Cart) TableName() string {
	return "carts"
}

// FindItem 按商品ID查找购物车项
func (c *Cart) FindItem(itemID uint) *CartItem {
	if c == nil {
		return nil
	}
	for i := range c.CartItems {
		if c.CartItems[i].ItemID == itemID {
			return &c.CartItems[i]
		}
	}
	return nil
}

// TotalQuantity 商品总件数
func (c *Cart) TotalQuantity() int {
	if c == nil {
		return 0
	}
	total := 0
	for _, line := range c.CartItems {
		total += line.Quantity
	}
	return total
}

// Subtotal 按当前商品价格计算的小计
func (c *Cart) Subtotal() Money {
	sum := NewMoneyFromDecimal(decimal.Zero)
	if c == nil {
		return sum
	}
	for _, line := range c.CartItems {
		if line.Item == nil {
			continue
		}
		sum = NewMoneyFromDecimal(sum.Decimal.Add(line.Item.PriceAmount.MulInt(line.Quantity).Decimal))
	}
	return sum
}
