package admin

import (
	"strings"

	handlershared "github.com/mercato-next/internal/http/handlers/shared"
	"github.com/mercato-next/internal/http/response"
	"github.com/mercato-next/internal/repository"
	"github.com/mercato-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ItemRequest 商品写入请求
type ItemRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Price       string `json:"price" binding:"required"`
	Stock       int    `json:"stock"`
	Status      string `json:"status"`
}

func (r ItemRequest) toInput() service.ItemInput {
	return service.ItemInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		Status:      r.Status,
	}
}

// ListItems 商品列表 (Admin)
func (h *Handler) ListItems(c *gin.Context) {
	page, pageSize := handlershared.QueryPagination(c)
	items, total, err := h.ItemService.List(repository.ItemListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
		Status:   strings.ToUpper(strings.TrimSpace(c.Query("status"))),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "fetch items failed", err)
		return
	}
	response.SuccessWithPage(c, items, response.NewPagination(page, pageSize, total))
}

// GetItem 商品详情 (Admin)
func (h *Handler) GetItem(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	item, err := h.ItemService.Get(id)
	if err != nil {
		respondWithMappedError(c, err, itemErrorRules, "fetch item failed")
		return
	}
	response.Success(c, item)
}

// CreateItem 创建商品
func (h *Handler) CreateItem(c *gin.Context) {
	var req ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	item, err := h.ItemService.Create(req.toInput())
	if err != nil {
		respondWithMappedError(c, err, itemErrorRules, "create item failed")
		return
	}
	response.Success(c, item)
}

// UpdateItem 更新商品
func (h *Handler) UpdateItem(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	item, err := h.ItemService.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		respondWithMappedError(c, err, itemErrorRules, "update item failed")
		return
	}
	response.Success(c, item)
}

// DeleteItem 删除商品
func (h *Handler) DeleteItem(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.ItemService.Delete(c.Request.Context(), id); err != nil {
		respondWithMappedError(c, err, itemErrorRules, "delete item failed")
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
