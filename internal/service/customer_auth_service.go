package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/mercato-next/internal/cache"
	"github.com/mercato-next/internal/config"
	"github.com/mercato-next/internal/logger"
	"github.com/mercato-next/internal/models"
	"github.com/mercato-next/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// CustomerJWTClaims 顾客 JWT 声明
type CustomerJWTClaims struct {
	CustomerID   uint   `json:"customer_id"`
	Email        string `json:"email"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// RegisterInput 顾客注册参数
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

// CustomerAuthService 顾客认证服务
type CustomerAuthService struct {
	cfg          *config.Config
	customerRepo repository.CustomerRepository
}

// NewCustomerAuthService 创建顾客认证服务
func NewCustomerAuthService(cfg *config.Config, customerRepo repository.CustomerRepository) *CustomerAuthService {
	return &CustomerAuthService{cfg: cfg, customerRepo: customerRepo}
}

// Register 注册顾客
func (s *CustomerAuthService) Register(input RegisterInput) (*models.Customer, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, input.Password); err != nil {
		return nil, err
	}
	existing, err := s.customerRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hashed, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	customer := &models.Customer{
		Email:        email,
		PasswordHash: hashed,
		DisplayName:  strings.TrimSpace(input.DisplayName),
		Status:       models.CustomerStatusActive,
	}
	if err := s.customerRepo.Create(customer); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return customer, nil
}

// Login 顾客登录
func (s *CustomerAuthService) Login(email, password string) (*models.Customer, string, time.Time, error) {
	customer, err := s.customerRepo.GetByEmail(email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if customer == nil || VerifyPassword(customer.PasswordHash, password) != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if customer.Status != models.CustomerStatusActive {
		return nil, "", time.Time{}, ErrCustomerDisabled
	}

	token, expiresAt, err := s.GenerateJWT(customer)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	now := time.Now()
	customer.LastLoginAt = &now
	if err := s.customerRepo.TouchLogin(customer.ID, now); err != nil {
		logger.Warnw("customer_touch_login_failed", "customer_id", customer.ID, "error", err)
	}
	_ = cache.SetCustomerAuthState(context.Background(), cache.BuildCustomerAuthState(customer))
	return customer, token, expiresAt, nil
}

// GenerateJWT 生成顾客 Token
func (s *CustomerAuthService) GenerateJWT(customer *models.Customer) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.CustomerJWT.TTL())
	claims := CustomerJWTClaims{
		CustomerID:   customer.ID,
		Email:        customer.Email,
		TokenVersion: customer.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.CustomerJWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// ParseJWT 解析顾客 Token
func (s *CustomerAuthService) ParseJWT(tokenString string) (*CustomerJWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &CustomerJWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.CustomerJWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*CustomerJWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// Authenticate 校验 Token 并返回顾客上下文
func (s *CustomerAuthService) Authenticate(ctx context.Context, tokenString string) (*CustomerContext, error) {
	claims, err := s.ParseJWT(tokenString)
	if err != nil {
		return nil, ErrInvalidToken
	}

	state, hit, err := cache.GetCustomerAuthState(ctx, claims.CustomerID)
	if err != nil {
		logger.Warnw("customer_auth_state_read_failed", "customer_id", claims.CustomerID, "error", err)
	}
	if !hit || state == nil {
		customer, err := s.customerRepo.GetByID(claims.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, ErrInvalidToken
		}
		state = cache.BuildCustomerAuthState(customer)
		_ = cache.SetCustomerAuthState(ctx, state)
	}

	if state.Status != models.CustomerStatusActive {
		return nil, ErrCustomerDisabled
	}
	if state.TokenVersion != claims.TokenVersion {
		return nil, ErrTokenRevoked
	}
	return &CustomerContext{ID: state.CustomerID, Email: state.Email}, nil
}
