package response

// AppError 接口层错误：Code 即 HTTP 状态码，Reason 为可展示的业务原因
type AppError struct {
	Code    int
	Message string
	Reason  string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WrapError 包装错误
func WrapError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithReason 附加业务原因
func (e *AppError) WithReason(reason string) *AppError {
	e.Reason = reason
	return e
}

// Data 错误响应的 data 字段
func (e *AppError) Data() map[string]interface{} {
	if e.Reason == "" {
		return nil
	}
	return map[string]interface{}{"reason": e.Reason}
}
