package public

import (
	"time"

	handlershared "github.com/mercato-next/internal/http/handlers/shared"
	"github.com/mercato-next/internal/http/response"
	"github.com/mercato-next/internal/models"
	"github.com/mercato-next/internal/service"

	"github.com/gin-gonic/gin"
)

// RegisterRequest 顾客注册请求
type RegisterRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
}

// CustomerLoginRequest 顾客登录请求
type CustomerLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CustomerTokenResponse 顾客登录/注册响应
type CustomerTokenResponse struct {
	Token     string           `json:"token"`
	Customer  *models.Customer `json:"customer"`
	ExpiresAt string           `json:"expires_at"`
}

// Register 顾客注册并直接签发 Token
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	customer, err := h.CustomerAuthService.Register(service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		respondWithMappedError(c, err, customerRegisterErrorRules, "register failed")
		return
	}
	token, expiresAt, err := h.CustomerAuthService.GenerateJWT(customer)
	if err != nil {
		respondError(c, response.CodeInternal, "register failed", err)
		return
	}
	handlershared.RequestLog(c).Infow("customer_registered", "customer_id", customer.ID)
	response.Success(c, CustomerTokenResponse{Token: token, Customer: customer, ExpiresAt: expiresAt.Format(time.RFC3339)})
}

// Login 顾客登录
func (h *Handler) Login(c *gin.Context) {
	var req CustomerLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	customer, token, expiresAt, err := h.CustomerAuthService.Login(req.Email, req.Password)
	if err != nil {
		respondWithMappedError(c, err, customerLoginErrorRules, "login failed")
		return
	}
	response.Success(c, CustomerTokenResponse{Token: token, Customer: customer, ExpiresAt: expiresAt.Format(time.RFC3339)})
}
