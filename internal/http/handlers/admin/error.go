package admin

import (
	handlershared "github.com/mercato-next/internal/http/handlers/shared"
	"github.com/mercato-next/internal/http/response"
	"github.com/mercato-next/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type mappedHandlerError = handlershared.MappedError

var adminAccountErrorRules = []mappedHandlerError{
	{Target: service.ErrNotFound, Code: response.CodeNotFound},
	{Target: service.ErrInvalidUsername, Code: response.CodeBadRequest},
	{Target: service.ErrUsernameTaken, Code: response.CodeConflict},
	{Target: service.ErrWeakPassword, Code: response.CodeBadRequest, Detail: true},
	{Target: service.ErrInvalidAdminState, Code: response.CodeBadRequest},
	{Target: service.ErrCannotDeleteSelf, Code: response.CodeBadRequest},
	{Target: service.ErrLastSuperAdmin, Code: response.CodeBadRequest},
}

var adminPasswordErrorRules = []mappedHandlerError{
	{Target: service.ErrInvalidPassword, Code: response.CodeBadRequest},
	{Target: service.ErrWeakPassword, Code: response.CodeBadRequest, Detail: true},
	{Target: service.ErrNotFound, Code: response.CodeNotFound},
}

var itemErrorRules = []mappedHandlerError{
	{Target: service.ErrItemNotFound, Code: response.CodeNotFound},
	{Target: service.ErrInvalidItem, Code: response.CodeBadRequest},
}

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackMsg string) {
	handlershared.RespondMappedError(c, err, rules, response.CodeInternal, fallbackMsg)
}
