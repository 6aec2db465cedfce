package shared

import (
	"errors"

	"github.com/mercato-next/internal/constants"
	"github.com/mercato-next/internal/http/response"
	"github.com/mercato-next/internal/logger"
	"github.com/mercato-next/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if id := c.GetString(constants.ContextKeyRequestID); id != "" {
		return logger.SW("request_id", id)
	}
	return logger.S()
}

// RespondError 返回错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, msg string, err error) {
	respondAppError(c, response.WrapError(code, msg, err))
}

// RespondServiceError 将带状态码的业务错误转换为响应：
// message 为方法级失败消息，data.reason 为具体业务原因，存储层错误不外泄。
func RespondServiceError(c *gin.Context, err error) {
	var se *service.Error
	if !errors.As(err, &se) {
		RespondError(c, response.CodeInternal, "internal server error", err)
		return
	}
	appErr := response.WrapError(service.StatusOf(err), se.Message, err)
	if reason := service.Reason(err); reason != "" && reason != se.Message {
		appErr.WithReason(reason)
	}
	respondAppError(c, appErr)
}

// MappedError 业务错误到接口错误响应的映射；Detail 为 true 时返回错误全文
type MappedError struct {
	Target error
	Code   int
	Detail bool
}

// RespondMappedError 按映射表返回错误，未命中时返回 fallback 并记录原始错误
func RespondMappedError(c *gin.Context, err error, rules []MappedError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.Target) {
			msg := rule.Target.Error()
			if rule.Detail {
				msg = err.Error()
			}
			RespondError(c, rule.Code, msg, nil)
			return
		}
	}
	RespondError(c, fallbackCode, fallbackMsg, err)
}

func respondAppError(c *gin.Context, appErr *response.AppError) {
	if appErr.Err != nil && appErr.Code >= response.CodeInternal {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", appErr.Err,
		)
	} else if appErr.Err != nil {
		RequestLog(c).Debugw("handler_rejected",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", appErr.Err,
		)
	}
	response.ErrorWithData(c, appErr.Code, appErr.Message, appErr.Data())
}
