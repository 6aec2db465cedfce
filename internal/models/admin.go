package models

import (
	"time"

	"gorm.io/gorm"
)

// 管理员状态
const (
	AdminStatusActive   = "active"
	AdminStatusDisabled = "disabled"
)

// Admin 管理员表
type Admin struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                                           // 主键
	Username           string         `gorm:"uniqueIndex;not null" json:"username"`                           // 管理员账号
	PasswordHash       string         `gorm:"not null" json:"-"`                                              // 密码哈希（不返回给前端）
	Status             string         `gorm:"type:varchar(20);not null;default:'active';index" json:"status"` // 账号状态
	TokenVersion       uint64         `gorm:"not null;default:0" json:"-"`                                    // Token 版本（用于全量失效）
	TokenInvalidBefore *time.Time     `gorm:"index" json:"-"`                                                 // 该时间点前签发的 Token 失效
	IsSuper            bool           `gorm:"not null;default:false;index" json:"is_super"`                   // 是否超级管理员（免权限校验）
	LastLoginAt        *time.Time     `json:"last_login_at"`                                                  // 最后登录时间
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                                        // 创建时间
	UpdatedAt          time.Time      `json:"updated_at"`                                                     // 更新时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                                                 // 软删除时间
}

// TableName 指定表名
func (Admin) TableName() string {
	return "admins"
}

// IsActive 是否可登录
func (a *Admin) IsActive() bool {
	return a != nil && (a.Status == "" || a.Status == AdminStatusActive)
}
