package constants

// 异步队列名称
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 异步任务类型
const (
	// TaskItemCartReconcile 商品下架后清理购物车
	TaskItemCartReconcile = "item:cart_reconcile"
)

// 请求上下文键
const (
	ContextKeyRequestID = "request_id"
	ContextKeyAdminID   = "admin_id"
	ContextKeyUsername  = "username"
	ContextKeyCustomer  = "customer"
)

// 缓存键前缀
const (
	CacheKeyCartSnapshot      = "cart:snapshot"
	CacheKeyCartGeneration    = "cart:generation"
	CacheKeyAdminAuthState    = "auth:admin"
	CacheKeyCustomerAuthState = "auth:customer"
	CacheKeyRateLimit         = "rate_limit"
)

// 分页默认值
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)
