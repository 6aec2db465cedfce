package public

import (
	handlershared "github.com/mercato-next/internal/http/handlers/shared"
	"github.com/mercato-next/internal/http/response"
	"github.com/mercato-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CartItemRequest 加入/移出购物车请求
type CartItemRequest struct {
	ItemID   uint `json:"item_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required"`
}

// GetMyCart 获取当前顾客购物车
func (h *Handler) GetMyCart(c *gin.Context) {
	customer, ok := handlershared.GetCustomer(c)
	if !ok {
		return
	}
	cart, err := h.CartService.MyCart(c.Request.Context(), customer)
	if err != nil {
		handlershared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, service.MsgFindCartSucceeded, handlershared.NewCartView(cart))
}

// AddCartItem 加入购物车
func (h *Handler) AddCartItem(c *gin.Context) {
	customer, ok := handlershared.GetCustomer(c)
	if !ok {
		return
	}
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, service.MsgAddItemFailed, err)
		return
	}
	cart, err := h.CartService.AddItem(c.Request.Context(), customer, service.CartItemInput{
		ItemID:   req.ItemID,
		Quantity: req.Quantity,
	})
	if err != nil {
		handlershared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, service.MsgAddItemSucceeded, handlershared.NewCartView(cart))
}

// RemoveCartItem 从购物车扣减商品
func (h *Handler) RemoveCartItem(c *gin.Context) {
	customer, ok := handlershared.GetCustomer(c)
	if !ok {
		return
	}
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, service.MsgRemoveItemFailed, err)
		return
	}
	cart, err := h.CartService.RemoveItem(c.Request.Context(), customer, service.CartItemInput{
		ItemID:   req.ItemID,
		Quantity: req.Quantity,
	})
	if err != nil {
		handlershared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, service.MsgRemoveItemSucceeded, handlershared.NewCartView(cart))
}

// DeleteCart 删除自己的购物车，返回删除前的内容
func (h *Handler) DeleteCart(c *gin.Context) {
	customer, ok := handlershared.GetCustomer(c)
	if !ok {
		return
	}
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	cart, err := h.CartService.DeleteCart(c.Request.Context(), customer, id)
	if err != nil {
		handlershared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, service.MsgDeleteCartSucceeded, handlershared.NewCartView(cart))
}
