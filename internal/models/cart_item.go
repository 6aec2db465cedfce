package models

import "time"

// CartItem 购物车项
type CartItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                              // 主键
	CartID    uint      `gorm:"not null;uniqueIndex:idx_cart_item_cart_item" json:"cart_id"`       // 购物车ID
	ItemID    uint      `gorm:"not null;uniqueIndex:idx_cart_item_cart_item;index" json:"item_id"` // 商品ID
	Quantity  int       `gorm:"not null;check:quantity > 0" json:"quantity"`                       // 数量（存在即 >= 1）
	CreatedAt time.Time `gorm:"index" json:"created_at"`                                           // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                                                        // 更新时间

	Item *Item `gorm:"foreignKey:ItemID" json:"item,omitempty"` // 关联商品
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}
