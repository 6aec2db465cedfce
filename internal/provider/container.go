package provider

import (
	"github.com/mercato-next/internal/authz"
	"github.com/mercato-next/internal/config"
	"github.com/mercato-next/internal/logger"
	"github.com/mercato-next/internal/models"
	"github.com/mercato-next/internal/queue"
	"github.com/mercato-next/internal/repository"
	"github.com/mercato-next/internal/service"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo    repository.AdminRepository
	CustomerRepo repository.CustomerRepository
	ItemRepo     repository.ItemRepository
	CartRepo     repository.CartRepository
	CartItemRepo repository.CartItemRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	CustomerAuthService *service.CustomerAuthService
	AdminService        *service.AdminService
	ItemService         *service.ItemService
	CartService         *service.CartService
}

// NewContainer 初始化容器（使用全局数据库连接）
func NewContainer(cfg *config.Config) (*Container, error) {
	return NewContainerWithDB(cfg, models.DB)
}

// NewContainerWithDB 基于指定数据库连接初始化容器
func NewContainerWithDB(cfg *config.Config, db *gorm.DB) (*Container, error) {
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		return nil, err
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories(db)

	// 2. 初始化 Services
	if err := c.initServices(db); err != nil {
		return nil, err
	}
	return c, nil
}

// Close 释放容器持有的外部资源
func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	return c.QueueClient.Close()
}

func (c *Container) initRepositories(db *gorm.DB) {
	c.AdminRepo = repository.NewAdminRepository(db)
	c.CustomerRepo = repository.NewCustomerRepository(db)
	c.ItemRepo = repository.NewItemRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.CartItemRepo = repository.NewCartItemRepository(db)
}

func (c *Container) initServices(db *gorm.DB) error {
	authzService, err := authz.NewService(db)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		return err
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		return err
	}

	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.CustomerAuthService = service.NewCustomerAuthService(c.Config, c.CustomerRepo)
	c.AdminService = service.NewAdminService(c.Config, c.AdminRepo, c.AuthzService)
	c.ItemService = service.NewItemService(c.ItemRepo, c.CartItemRepo, c.QueueClient)
	c.CartService = service.NewCartService(c.CartRepo, c.CartItemRepo, c.ItemRepo, service.CartOptions{
		CacheTTL:        c.Config.Cart.CacheTTL(),
		MaxLineQuantity: c.Config.Cart.MaxLineQuantity,
	})
	return nil
}
