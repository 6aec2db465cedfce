package public

import (
	"errors"

	handlershared "github.com/mercato-next/internal/http/handlers/shared"
	"github.com/mercato-next/internal/http/response"
	"github.com/mercato-next/internal/repository"
	"github.com/mercato-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ListItems 前台商品列表（仅可售）
func (h *Handler) ListItems(c *gin.Context) {
	page, pageSize := handlershared.QueryPagination(c)
	items, total, err := h.ItemService.ListPublic(repository.ItemListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
		InStock:  c.Query("in_stock") == "true",
	})
	if err != nil {
		respondError(c, response.CodeInternal, "fetch items failed", err)
		return
	}
	response.SuccessWithPage(c, items, response.NewPagination(page, pageSize, total))
}

// GetItem 前台商品详情，不可售商品视为不存在
func (h *Handler) GetItem(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	item, err := h.ItemService.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			respondError(c, response.CodeNotFound, service.ErrItemNotFound.Error(), nil)
			return
		}
		respondError(c, response.CodeInternal, "fetch item failed", err)
		return
	}
	if !item.IsAvailable() {
		respondError(c, response.CodeNotFound, service.ErrItemNotFound.Error(), nil)
		return
	}
	response.Success(c, item)
}
