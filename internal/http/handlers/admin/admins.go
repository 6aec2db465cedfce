package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/mercato-next/internal/constants"
	handlershared "github.com/mercato-next/internal/http/handlers/shared"
	"github.com/mercato-next/internal/http/response"
	"github.com/mercato-next/internal/repository"
	"github.com/mercato-next/internal/service"

	"github.com/gin-gonic/gin"
)

type createAdminPayload struct {
	Username string   `json:"username" binding:"required"`
	Password string   `json:"password" binding:"required"`
	IsSuper  bool     `json:"is_super"`
	Roles    []string `json:"roles"`
}

type updateAdminPayload struct {
	Password *string  `json:"password"`
	Status   *string  `json:"status"`
	IsSuper  *bool    `json:"is_super"`
	Roles    []string `json:"roles"`
}

// ListAdmins 管理员列表
// 查询参数：username、status、is_super、page、page_size、sort=field[:asc|desc][,field...]
func (h *Handler) ListAdmins(c *gin.Context) {
	page, pageSize := handlershared.QueryPagination(c)
	input := service.AdminListInput{
		Page:     page,
		PageSize: pageSize,
		Username: c.Query("username"),
		Status:   c.Query("status"),
		Sort:     parseSortQuery(c.Query("sort")),
	}
	if raw := strings.TrimSpace(c.Query("is_super")); raw != "" {
		isSuper, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "invalid is_super", nil)
			return
		}
		input.IsSuper = &isSuper
	}

	admins, total, err := h.AdminService.List(input)
	if err != nil {
		code := response.CodeInternal
		if errors.Is(err, repository.ErrUnknownQueryField) {
			code = response.CodeBadRequest
		}
		respondError(c, code, repository.ErrQueryFailed.Error(), err)
		return
	}
	response.SuccessWithPage(c, admins, response.NewPagination(page, pageSize, total))
}

// GetAdmin 管理员详情
func (h *Handler) GetAdmin(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	view, err := h.AdminService.Get(id)
	if err != nil {
		respondWithMappedError(c, err, adminAccountErrorRules, "fetch admin failed")
		return
	}
	response.Success(c, view)
}

// CreateAdmin 创建管理员
func (h *Handler) CreateAdmin(c *gin.Context) {
	var req createAdminPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	view, err := h.AdminService.Create(service.CreateAdminInput{
		Username: req.Username,
		Password: req.Password,
		IsSuper:  req.IsSuper,
		Roles:    req.Roles,
	})
	if err != nil {
		respondWithMappedError(c, err, adminAccountErrorRules, "create admin failed")
		return
	}
	actorID := c.GetUint(constants.ContextKeyAdminID)
	requestLog(c).Infow("admin_created",
		"operator_admin_id", actorID,
		"target_admin_id", view.ID,
		"target_username", view.Username,
		"is_super", view.IsSuper,
	)
	response.Success(c, view)
}

// UpdateAdmin 更新管理员
func (h *Handler) UpdateAdmin(c *gin.Context) {
	actorID, ok := handlershared.GetAdminID(c)
	if !ok {
		return
	}
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req updateAdminPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	view, err := h.AdminService.Update(actorID, id, service.UpdateAdminInput{
		Password: req.Password,
		Status:   req.Status,
		IsSuper:  req.IsSuper,
		Roles:    req.Roles,
	})
	if err != nil {
		respondWithMappedError(c, err, adminAccountErrorRules, "update admin failed")
		return
	}
	requestLog(c).Infow("admin_updated", "operator_admin_id", actorID, "target_admin_id", id)
	response.Success(c, view)
}

// DeleteAdmin 删除管理员
func (h *Handler) DeleteAdmin(c *gin.Context) {
	actorID, ok := handlershared.GetAdminID(c)
	if !ok {
		return
	}
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.AdminService.Delete(actorID, id); err != nil {
		respondWithMappedError(c, err, adminAccountErrorRules, "delete admin failed")
		return
	}
	requestLog(c).Infow("admin_deleted", "operator_admin_id", actorID, "target_admin_id", id)
	response.Success(c, gin.H{"deleted": true})
}

// parseSortQuery 解析 sort=field[:asc|desc]，多个字段用逗号分隔；字段合法性由仓库层校验
func parseSortQuery(raw string) []repository.SortField {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	fields := make([]repository.SortField, 0)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, direction, _ := strings.Cut(part, ":")
		fields = append(fields, repository.SortField{
			Field: strings.TrimSpace(name),
			Desc:  strings.EqualFold(strings.TrimSpace(direction), "desc"),
		})
	}
	return fields
}
