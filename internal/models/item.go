package models

import (
	"time"

	"gorm.io/gorm"
)

// 商品状态
const (
	ItemStatusAvailable   = "AVAILABLE"
	ItemStatusUnavailable = "UNAVAILABLE"
)

// Item 商品表
type Item struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                              // 主键
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`                            // 名称
	Description string         `gorm:"type:text" json:"description"`                                      // 描述
	PriceAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"`         // 价格
	Stock       int            `gorm:"not null;default:0" json:"stock"`                                   // 库存（非负）
	Status      string         `gorm:"type:varchar(20);not null;default:'AVAILABLE';index" json:"status"` // 状态
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                                           // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                                                        // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                                    // 软删除时间
}

// TableName 指定表名
func (Item) TableName() string {
	return "items"
}

// IsAvailable 是否可加入购物车
func (i *Item) IsAvailable() bool {
	return i != nil && i.Status == ItemStatusAvailable
}
