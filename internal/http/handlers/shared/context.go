package shared

import (
	"strconv"
	"strings"

	"github.com/mercato-next/internal/constants"
	"github.com/mercato-next/internal/http/response"
	"github.com/mercato-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminID 读取管理员鉴权中间件写入的管理员 ID
func GetAdminID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(constants.ContextKeyAdminID)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "unauthorized", nil)
		return 0, false
	}
	id, ok := value.(uint)
	if !ok || id == 0 {
		RespondError(c, response.CodeInternal, "invalid admin context", nil)
		return 0, false
	}
	return id, true
}

// GetCustomer 读取顾客鉴权中间件写入的顾客上下文
func GetCustomer(c *gin.Context) (service.CustomerContext, bool) {
	value, exists := c.Get(constants.ContextKeyCustomer)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "unauthorized", nil)
		return service.CustomerContext{}, false
	}
	customer, ok := value.(service.CustomerContext)
	if !ok || customer.ID == 0 {
		RespondError(c, response.CodeInternal, "invalid customer context", nil)
		return service.CustomerContext{}, false
	}
	return customer, true
}

// ParseIDParam 解析路径中的正整数 ID
func ParseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		RespondError(c, response.CodeBadRequest, "invalid "+name, nil)
		return 0, false
	}
	return uint(id), true
}
