package service

import (
	"errors"
	"net/http"
)

// 通用错误
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidPassword    = errors.New("current password is incorrect")
	ErrWeakPassword       = errors.New("password does not meet policy")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenRevoked       = errors.New("token has been revoked")
)

// 账号相关错误
var (
	ErrAdminDisabled     = errors.New("admin account disabled")
	ErrUsernameTaken     = errors.New("username already exists")
	ErrInvalidUsername   = errors.New("username must be 3-32 letters, digits, dot, dash or underscore")
	ErrCannotDeleteSelf  = errors.New("cannot delete current admin")
	ErrLastSuperAdmin    = errors.New("at least one super admin is required")
	ErrInvalidAdminState = errors.New("invalid admin status")
	ErrCustomerDisabled  = errors.New("customer account disabled")
	ErrEmailTaken        = errors.New("email already registered")
	ErrInvalidEmail      = errors.New("invalid email address")
)

// 商品与购物车错误
var (
	ErrInvalidItem            = errors.New("invalid item")
	ErrItemNotFound           = errors.New("cannot find item")
	ErrItemNotAvailable       = errors.New("item not available")
	ErrCartNotFound           = errors.New("cannot find cart")
	ErrItemAlreadyInCart      = errors.New("item already in cart")
	ErrItemNotInCart          = errors.New("item is not in cart")
	ErrRemoveQuantityExceeded = errors.New("unable to remove item because of quantity")
	ErrInvalidCartItem        = errors.New("invalid cart item")
	ErrCustomerRequired       = errors.New("customer is required")
)

// 购物车方法级失败消息
const (
	MsgAddItemFailed    = "Cannot add item to cart"
	MsgRemoveItemFailed = "Cannot remove item from cart"
	MsgFindCartFailed   = "Cannot find cart"
	MsgDeleteCartFailed = "Cannot remove cart"
)

// 购物车方法级成功消息
const (
	MsgAddItemSucceeded    = "Successfully added item to cart"
	MsgRemoveItemSucceeded = "Successfully removed item from cart"
	MsgFindCartSucceeded   = "Successfully found cart"
	MsgDeleteCartSucceeded = "Successfully removed cart"
)

// Error 带状态码的业务错误
type Error struct {
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// newError 以哨兵错误构造带状态码的业务错误
func newError(code int, cause error) *Error {
	return &Error{Code: code, Message: cause.Error(), Err: cause}
}

// wrapError 用方法级消息包装失败，上游带状态码时沿用，否则使用 fallback
func wrapError(err error, fallback int, message string) error {
	if err == nil {
		return nil
	}
	code := fallback
	var upstream *Error
	if errors.As(err, &upstream) && upstream.Code != 0 {
		code = upstream.Code
	}
	return &Error{Code: code, Message: message, Err: err}
}

// StatusOf 返回错误携带的状态码，未知错误视为 500
func StatusOf(err error) int {
	var se *Error
	if errors.As(err, &se) && se.Code != 0 {
		return se.Code
	}
	return http.StatusInternalServerError
}

// Reason 返回最内层业务错误的消息，没有业务错误时返回空串
func Reason(err error) string {
	reason := ""
	for e := err; e != nil; e = errors.Unwrap(e) {
		if se, ok := e.(*Error); ok {
			reason = se.Message
		}
	}
	return reason
}
