package models

import (
	"strings"

	"github.com/mercato-next/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

const defaultAdminPassword = "admin123"

// InitDefaultAdmin 初始化默认管理员账号
func InitDefaultAdmin(username, password string) error {
	var count int64
	if err := DB.Model(&Admin{}).Count(&count).Error; err != nil {
		return err
	}

	if username == "" {
		username = "admin"
	}
	// 已有管理员时只保证默认账号仍是超级管理员
	if count > 0 {
		if err := DB.Model(&Admin{}).Where("username = ?", username).Update("is_super", true).Error; err != nil {
			logger.Warnw("ensure_default_admin_super_failed", "username", username, "error", err)
		}
		return nil
	}

	if password == "" {
		password = defaultAdminPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := Admin{
		Username:     strings.TrimSpace(username),
		PasswordHash: string(hash),
		Status:       AdminStatusActive,
		IsSuper:      true,
	}
	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	if password == defaultAdminPassword {
		logger.Warnw("default_admin_created_with_default_password", "username", admin.Username)
		logger.Warnw("default_admin_password_change_required", "username", admin.Username)
	} else {
		logger.Warnw("default_admin_created", "username", admin.Username, "password_hidden", true)
	}
	return nil
}
