package admin

import (
	handlershared "github.com/mercato-next/internal/http/handlers/shared"
	"github.com/mercato-next/internal/http/response"
	"github.com/mercato-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetCart 按 ID 查看购物车
func (h *Handler) GetCart(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	cart, err := h.CartService.FindOne(c.Request.Context(), id)
	if err != nil {
		handlershared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, service.MsgFindCartSucceeded, handlershared.NewCartView(cart))
}
