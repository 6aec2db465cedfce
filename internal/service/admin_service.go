package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/mercato-next/internal/cache"
	"github.com/mercato-next/internal/config"
	"github.com/mercato-next/internal/models"
	"github.com/mercato-next/internal/repository"

	"gorm.io/gorm"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,32}$`)

// RoleAssigner 管理员角色绑定
type RoleAssigner interface {
	SetAdminRoles(adminID uint, roles []string) error
	GetAdminRoles(adminID uint) ([]string, error)
	RemoveAdmin(adminID uint) error
}

// AdminListInput 管理员列表查询参数
type AdminListInput struct {
	Page     int
	PageSize int
	Username string
	Status   string
	IsSuper  *bool
	Sort     []repository.SortField
}

// CreateAdminInput 创建管理员参数
type CreateAdminInput struct {
	Username string
	Password string
	IsSuper  bool
	Roles    []string
}

// UpdateAdminInput 更新管理员参数，nil 表示不修改
type UpdateAdminInput struct {
	Password *string
	Status   *string
	IsSuper  *bool
	Roles    []string
}

// AdminView 管理员及其角色
type AdminView struct {
	models.Admin
	Roles []string `json:"roles"`
}

// AdminService 管理员账号管理
type AdminService struct {
	cfg       *config.Config
	adminRepo repository.AdminRepository
	roles     RoleAssigner
}

// NewAdminService 创建管理员服务
func NewAdminService(cfg *config.Config, adminRepo repository.AdminRepository, roles RoleAssigner) *AdminService {
	return &AdminService{cfg: cfg, adminRepo: adminRepo, roles: roles}
}

// List 分页查询管理员，失败时返回 repository.ErrQueryFailed
func (s *AdminService) List(input AdminListInput) ([]AdminView, int64, error) {
	filter := map[string]interface{}{}
	if username := strings.TrimSpace(input.Username); username != "" {
		filter["username"] = username
	}
	if status := strings.TrimSpace(input.Status); status != "" {
		filter["status"] = status
	}
	if input.IsSuper != nil {
		filter["is_super"] = *input.IsSuper
	}
	pageSize := input.PageSize
	page := input.Page
	if page < 1 {
		page = 1
	}

	admins, total, err := s.adminRepo.FindByQuery(repository.AdminQuery{
		Filter: filter,
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
		Order:  input.Sort,
	})
	if err != nil {
		return nil, 0, err
	}
	views := make([]AdminView, 0, len(admins))
	for _, admin := range admins {
		views = append(views, s.view(admin))
	}
	return views, total, nil
}

// Get 获取管理员
func (s *AdminService) Get(id uint) (*AdminView, error) {
	admin, err := s.adminRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrNotFound
	}
	view := s.view(*admin)
	return &view, nil
}

// Create 创建管理员
func (s *AdminService) Create(input CreateAdminInput) (*AdminView, error) {
	username := strings.TrimSpace(input.Username)
	if !usernamePattern.MatchString(username) {
		return nil, ErrInvalidUsername
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, input.Password); err != nil {
		return nil, err
	}
	existing, err := s.adminRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hashed, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	admin := &models.Admin{
		Username:     username,
		PasswordHash: hashed,
		Status:       models.AdminStatusActive,
		IsSuper:      input.IsSuper,
	}
	if err := s.adminRepo.Create(admin); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	if len(input.Roles) > 0 && s.roles != nil {
		if err := s.roles.SetAdminRoles(admin.ID, input.Roles); err != nil {
			return nil, err
		}
	}
	view := s.view(*admin)
	return &view, nil
}

// Update 更新管理员；重置密码或停用账号会使其已签发的 Token 失效
func (s *AdminService) Update(actorID, id uint, input UpdateAdminInput) (*AdminView, error) {
	admin, err := s.adminRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrNotFound
	}

	revoke := false
	if input.Password != nil {
		if err := validatePassword(s.cfg.Security.PasswordPolicy, *input.Password); err != nil {
			return nil, err
		}
		hashed, err := HashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		admin.PasswordHash = hashed
		revoke = true
	}
	if input.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*input.Status))
		if status != models.AdminStatusActive && status != models.AdminStatusDisabled {
			return nil, ErrInvalidAdminState
		}
		if status == models.AdminStatusDisabled && actorID == id {
			return nil, ErrCannotDeleteSelf
		}
		if status != admin.Status {
			revoke = revoke || status == models.AdminStatusDisabled
			admin.Status = status
		}
	}
	if input.IsSuper != nil && admin.IsSuper && !*input.IsSuper {
		if err := s.ensureAnotherSuper(); err != nil {
			return nil, err
		}
	}
	if input.IsSuper != nil {
		admin.IsSuper = *input.IsSuper
	}
	if admin.IsSuper && admin.Status == models.AdminStatusDisabled {
		if err := s.ensureAnotherSuper(); err != nil {
			return nil, err
		}
	}
	if revoke {
		revokeAdminTokens(admin)
	}

	if err := s.adminRepo.Update(admin); err != nil {
		return nil, err
	}
	if input.Roles != nil && s.roles != nil {
		if err := s.roles.SetAdminRoles(admin.ID, input.Roles); err != nil {
			return nil, err
		}
	}
	_ = cache.SetAdminAuthState(context.Background(), cache.BuildAdminAuthState(admin))
	view := s.view(*admin)
	return &view, nil
}

// Delete 删除管理员（不能删除自己与最后一个超级管理员）
func (s *AdminService) Delete(actorID, id uint) error {
	if actorID == id {
		return ErrCannotDeleteSelf
	}
	admin, err := s.adminRepo.GetByID(id)
	if err != nil {
		return err
	}
	if admin == nil {
		return ErrNotFound
	}
	if admin.IsSuper {
		if err := s.ensureAnotherSuper(); err != nil {
			return err
		}
	}
	if err := s.adminRepo.Delete(id); err != nil {
		return err
	}
	if s.roles != nil {
		if err := s.roles.RemoveAdmin(id); err != nil {
			return err
		}
	}
	_ = cache.DelAdminAuthState(context.Background(), id)
	return nil
}

func (s *AdminService) ensureAnotherSuper() error {
	count, err := s.adminRepo.CountSuper()
	if err != nil {
		return err
	}
	if count <= 1 {
		return ErrLastSuperAdmin
	}
	return nil
}

func (s *AdminService) view(admin models.Admin) AdminView {
	view := AdminView{Admin: admin, Roles: []string{}}
	if s.roles == nil {
		return view
	}
	if roles, err := s.roles.GetAdminRoles(admin.ID); err == nil {
		view.Roles = roles
	}
	return view
}
