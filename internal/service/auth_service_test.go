package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mercato-next/internal/cache"
	"github.com/mercato-next/internal/models"
	"github.com/mercato-next/internal/repository"
)

func createTestAdmin(t *testing.T, repo repository.AdminRepository, username, password string, isSuper bool) *models.Admin {
	t.Helper()
	hashed, err := HashPassword(password)
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	admin := &models.Admin{Username: username, PasswordHash: hashed, Status: models.AdminStatusActive, IsSuper: isSuper}
	if err := repo.Create(admin); err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	return admin
}

func TestAdminLoginAndTokenRoundTrip(t *testing.T) {
	db := openServiceTestDB(t)
	repo := repository.NewAdminRepository(db)
	svc := NewAuthService(testConfig(), repo)
	createTestAdmin(t, repo, "root", "Passw0rd!", true)

	if _, _, _, err := svc.Login("root", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, _, _, err := svc.Login("ghost", "Passw0rd!"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown admin, got %v", err)
	}

	admin, token, expiresAt, err := svc.Login("root", "Passw0rd!")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !expiresAt.After(time.Now()) {
		t.Fatalf("expiry should be in the future")
	}
	claims, err := svc.ParseJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.AdminID != admin.ID || claims.Username != "root" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	state, err := svc.ResolveAdminState(context.Background(), admin.ID)
	if err != nil {
		t.Fatalf("resolve state failed: %v", err)
	}
	if err := CheckAdminClaims(claims, state); err != nil {
		t.Fatalf("fresh token should be valid: %v", err)
	}

	reloaded, _ := repo.GetByID(admin.ID)
	if reloaded.LastLoginAt == nil {
		t.Fatalf("last login should be recorded")
	}
}

func TestAdminLoginRejectsDisabled(t *testing.T) {
	db := openServiceTestDB(t)
	repo := repository.NewAdminRepository(db)
	svc := NewAuthService(testConfig(), repo)
	admin := createTestAdmin(t, repo, "ops", "Passw0rd!", false)
	admin.Status = models.AdminStatusDisabled
	if err := repo.Update(admin); err != nil {
		t.Fatalf("disable admin failed: %v", err)
	}

	if _, _, _, err := svc.Login("ops", "Passw0rd!"); !errors.Is(err, ErrAdminDisabled) {
		t.Fatalf("expected disabled error, got %v", err)
	}
}

func TestChangePasswordRevokesTokens(t *testing.T) {
	db := openServiceTestDB(t)
	repo := repository.NewAdminRepository(db)
	svc := NewAuthService(testConfig(), repo)
	createTestAdmin(t, repo, "root", "Passw0rd!", true)

	admin, token, _, err := svc.Login("root", "Passw0rd!")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := svc.ChangePassword(admin.ID, "bad", "N3wPassword"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected invalid password, got %v", err)
	}
	if err := svc.ChangePassword(admin.ID, "Passw0rd!", "weak"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected weak password, got %v", err)
	}
	if err := svc.ChangePassword(admin.ID, "Passw0rd!", "N3wPassword"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	claims, err := svc.ParseJWT(token)
	if err != nil {
		t.Fatalf("parse old token failed: %v", err)
	}
	state, err := svc.ResolveAdminState(context.Background(), admin.ID)
	if err != nil {
		t.Fatalf("resolve state failed: %v", err)
	}
	if err := CheckAdminClaims(claims, state); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("old token should be revoked, got %v", err)
	}
	if _, _, _, err := svc.Login("root", "N3wPassword"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}

func TestParseJWTRejectsForeignSecret(t *testing.T) {
	cfg := testConfig()
	admin := NewAuthService(cfg, nil)
	customer := NewCustomerAuthService(cfg, nil)

	token, _, err := customer.GenerateJWT(&models.Customer{ID: 1, Email: "a@example.com"})
	if err != nil {
		t.Fatalf("generate customer token failed: %v", err)
	}
	if _, err := admin.ParseJWT(token); err == nil {
		t.Fatalf("admin parser must reject customer token")
	}
}

func TestCheckAdminClaimsDisabledState(t *testing.T) {
	claims := &JWTClaims{AdminID: 1, TokenVersion: 2}
	state := &cache.AdminAuthState{AdminID: 1, Status: models.AdminStatusDisabled, TokenVersion: 2}
	if err := CheckAdminClaims(claims, state); !errors.Is(err, ErrAdminDisabled) {
		t.Fatalf("expected disabled, got %v", err)
	}
	if err := CheckAdminClaims(nil, state); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}
