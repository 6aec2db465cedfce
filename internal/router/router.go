package router

import (
	"sort"
	"strings"

	"github.com/mercato-next/internal/authz"
	"github.com/mercato-next/internal/cache"
	"github.com/mercato-next/internal/config"
	adminhandlers "github.com/mercato-next/internal/http/handlers/admin"
	publichandlers "github.com/mercato-next/internal/http/handlers/public"
	"github.com/mercato-next/internal/http/response"
	"github.com/mercato-next/internal/logger"
	"github.com/mercato-next/internal/provider"

	"github.com/gin-gonic/gin"
)

const (
	adminLoginPath   = "/api/v1/admin/login"
	defaultMetricsAt = "/metrics"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Name:          "login",
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
	}
	adminLoginRule := RateLimitRule{
		Name:          "admin_login",
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))
	if cfg.Metrics.Enabled {
		metrics := NewMetrics()
		r.Use(metrics.Middleware())
		path := strings.TrimSpace(cfg.Metrics.Path)
		if path == "" {
			path = defaultMetricsAt
		}
		r.GET(path, gin.WrapH(metrics.Handler()))
	}

	apiV1 := r.Group("/api/v1")
	{
		// 公开商品
		public := apiV1.Group("/public")
		{
			public.GET("/items", publicHandler.ListItems)
			public.GET("/items/:id", publicHandler.GetItem)
		}

		// 顾客认证
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.Register)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.Login)
		}

		// 顾客购物车（需鉴权）
		customer := apiV1.Group("")
		customer.Use(CustomerJWTAuthMiddleware(c.CustomerAuthService))
		{
			customer.GET("/cart", publicHandler.GetMyCart)
			customer.POST("/cart/items", publicHandler.AddCartItem)
			customer.POST("/cart/items/remove", publicHandler.RemoveCartItem)
			customer.DELETE("/cart/:id", publicHandler.DeleteCart)
		}

		admin := apiV1.Group("/admin")
		admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIPAndJSONField("username")), adminHandler.AdminLogin)

		// 仅需登录的接口
		self := admin.Group("")
		self.Use(JWTAuthMiddleware(c.AuthService))
		{
			self.GET("/me", adminHandler.GetCurrentAdmin)
			self.PUT("/password", adminHandler.UpdateAdminPassword)
		}

		// 需要 RBAC 授权的接口
		authorized := admin.Group("")
		authorized.Use(JWTAuthMiddleware(c.AuthService), AdminRBACMiddleware(c.AuthzService))
		{
			// 管理员管理
			authorized.GET("/admins", adminHandler.ListAdmins)
			authorized.GET("/admins/:id", adminHandler.GetAdmin)
			authorized.POST("/admins", adminHandler.CreateAdmin)
			authorized.PUT("/admins/:id", adminHandler.UpdateAdmin)
			authorized.DELETE("/admins/:id", adminHandler.DeleteAdmin)

			// 权限
			authorized.GET("/authz/roles", adminHandler.ListAuthzRoles)
			authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
				response.Success(ctx, buildAdminPermissionCatalog(r))
			})

			// 商品管理
			authorized.GET("/items", adminHandler.ListItems)
			authorized.GET("/items/:id", adminHandler.GetItem)
			authorized.POST("/items", adminHandler.CreateItem)
			authorized.PUT("/items/:id", adminHandler.UpdateItem)
			authorized.DELETE("/items/:id", adminHandler.DeleteItem)

			// 购物车查看
			authorized.GET("/carts/:id", adminHandler.GetCart)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		response.Success(c, gin.H{"status": "ok"})
	})

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "route not found")
	})

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

// buildAdminPermissionCatalog 根据已注册的后台路由生成可授权的权限清单
func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))
	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") || item.Path == adminLoginPath {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})
	return items
}

func deriveAdminPermissionModule(object string) string {
	segments := strings.Split(strings.Trim(strings.TrimSpace(object), "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		return "system"
	}
	if segments[0] != "admin" || len(segments) == 1 {
		return segments[0]
	}
	return segments[1]
}
