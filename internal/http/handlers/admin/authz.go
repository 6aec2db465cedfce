package admin

import (
	"github.com/mercato-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListAuthzRoles 角色列表（含策略）
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "list roles failed", err)
		return
	}
	result := make([]gin.H, 0, len(roles))
	for _, role := range roles {
		policies, err := h.AuthzService.RolePolicies(role)
		if err != nil {
			respondError(c, response.CodeInternal, "list roles failed", err)
			return
		}
		result = append(result, gin.H{"role": role, "policies": policies})
	}
	response.Success(c, result)
}
