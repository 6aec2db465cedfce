package repository

import (
	"errors"
	"fmt"
)

// ErrQueryFailed 通用查询失败（具体原因通过 %w 保留）
var ErrQueryFailed = errors.New("cannot query")

// ErrUnknownQueryField 查询条件或排序引用了不允许的字段
var ErrUnknownQueryField = errors.New("unknown query field")

func queryFailed(cause error) error {
	return fmt.Errorf("%w: %w", ErrQueryFailed, cause)
}
