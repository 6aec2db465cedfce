package service

import (
	"fmt"
	"unicode"

	"github.com/mercato-next/internal/config"
)

type passwordPolicyError struct {
	reason string
}

func (e passwordPolicyError) Error() string {
	return e.reason
}

func (e passwordPolicyError) Is(target error) bool {
	return target == ErrWeakPassword
}

func validatePassword(policy config.PasswordPolicyConfig, password string) error {
	if policy.MinLength > 0 && len([]rune(password)) < policy.MinLength {
		return passwordPolicyError{reason: fmt.Sprintf("password must be at least %d characters", policy.MinLength)}
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasNumber = true
		default:
			hasSpecial = true
		}
	}

	switch {
	case policy.RequireUpper && !hasUpper:
		return passwordPolicyError{reason: "password must contain an uppercase letter"}
	case policy.RequireLower && !hasLower:
		return passwordPolicyError{reason: "password must contain a lowercase letter"}
	case policy.RequireNumber && !hasNumber:
		return passwordPolicyError{reason: "password must contain a digit"}
	case policy.RequireSpecial && !hasSpecial:
		return passwordPolicyError{reason: "password must contain a special character"}
	}
	return nil
}
