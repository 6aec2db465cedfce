package repository

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mercato-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// adminQueryColumns FindByQuery 允许过滤与排序的列
var adminQueryColumns = map[string]string{
	"id":            "id",
	"username":      "username",
	"status":        "status",
	"is_super":      "is_super",
	"created_at":    "created_at",
	"last_login_at": "last_login_at",
}

// AdminRepository 管理员数据访问接口
type AdminRepository interface {
	GetByUsername(username string) (*models.Admin, error)
	GetByID(id uint) (*models.Admin, error)
	FindByQuery(query AdminQuery) ([]models.Admin, int64, error)
	CountSuper() (int64, error)
	Create(admin *models.Admin) error
	Update(admin *models.Admin) error
	TouchLogin(id uint, at time.Time) error
	Delete(id uint) error
}

// GormAdminRepository GORM 实现
type GormAdminRepository struct {
	db *gorm.DB
}

// NewAdminRepository 创建管理员仓库
func NewAdminRepository(db *gorm.DB) *GormAdminRepository {
	return &GormAdminRepository{db: db}
}

// WithTx 绑定事务
func (r *GormAdminRepository) WithTx(tx *gorm.DB) *GormAdminRepository {
	if tx == nil {
		return r
	}
	return &GormAdminRepository{db: tx}
}

// GetByUsername 根据用户名获取管理员
func (r *GormAdminRepository) GetByUsername(username string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.Where("username = ?", username).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

// GetByID 根据 ID 获取管理员
func (r *GormAdminRepository) GetByID(id uint) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.First(&admin, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

// FindByQuery 按过滤条件分页排序查询，返回当前页与满足条件的总数。
// 任何失败都返回 ErrQueryFailed，原始错误保留在错误链中。
func (r *GormAdminRepository) FindByQuery(q AdminQuery) ([]models.Admin, int64, error) {
	query := r.db.Model(&models.Admin{})

	keys := make([]string, 0, len(q.Filter))
	for key := range q.Filter {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		column, ok := adminQueryColumns[strings.ToLower(strings.TrimSpace(key))]
		if !ok {
			return nil, 0, queryFailed(fmt.Errorf("%w: filter %q", ErrUnknownQueryField, key))
		}
		query = query.Where(clause.Eq{Column: clause.Column{Name: column}, Value: q.Filter[key]})
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, queryFailed(err)
	}

	orderBy := make([]clause.OrderByColumn, 0, len(q.Order)+1)
	for _, s := range q.Order {
		column, ok := adminQueryColumns[strings.ToLower(strings.TrimSpace(s.Field))]
		if !ok {
			return nil, 0, queryFailed(fmt.Errorf("%w: sort %q", ErrUnknownQueryField, s.Field))
		}
		orderBy = append(orderBy, clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: s.Desc})
	}
	// 追加主键保证翻页稳定
	orderBy = append(orderBy, clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	query = query.Clauses(clause.OrderBy{Columns: orderBy})

	admins := make([]models.Admin, 0)
	if err := applyLimitOffset(query, q.Limit, q.Offset).Find(&admins).Error; err != nil {
		return nil, 0, queryFailed(err)
	}
	return admins, total, nil
}

// CountSuper 统计超级管理员数量
func (r *GormAdminRepository) CountSuper() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Admin{}).Where("is_super = ?", true).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create 创建管理员
func (r *GormAdminRepository) Create(admin *models.Admin) error {
	return r.db.Create(admin).Error
}

// Update 更新管理员
func (r *GormAdminRepository) Update(admin *models.Admin) error {
	return r.db.Save(admin).Error
}

// TouchLogin 记录最后登录时间
func (r *GormAdminRepository) TouchLogin(id uint, at time.Time) error {
	return r.db.Model(&models.Admin{}).Where("id = ?", id).Update("last_login_at", at).Error
}

// Delete 删除管理员（软删除）
func (r *GormAdminRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Delete(&models.Admin{}, id).Error
}
