package repository

// SortField 排序字段
type SortField struct {
	Field string
	Desc  bool
}

// AdminQuery 管理员通用查询（过滤 + 分页 + 排序）
type AdminQuery struct {
	// Filter 列名到取值的等值条件，列名须在白名单内
	Filter map[string]interface{}
	Limit  int
	Offset int
	Order  []SortField
}

// ItemListFilter 查询商品列表的过滤条件
type ItemListFilter struct {
	Page     int
	PageSize int
	Search   string
	Status   string
	InStock  bool
}
