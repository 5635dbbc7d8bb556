package domain

import (
	"errors"
	"fmt"
)

// Kind 错误分类
type Kind string

const (
	KindNotFound    Kind = "NOT_FOUND"
	KindNoOp        Kind = "NO_OP"
	KindInput       Kind = "INPUT_ERROR"
	KindComputation Kind = "COMPUTATION_ERROR"
	KindInternal    Kind = "INTERNAL_ERROR"
)

type AppError struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause 附加底层错误
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func NewError(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func Wrap(err error, kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message, Cause: err}
}

// KindOf 返回错误的分类，非 AppError 一律视为内部错误
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// NotFound 创建资源不存在错误
func NotFound(resource string, id int64) *AppError {
	return NewError(KindNotFound, fmt.Sprintf("%s %d 不存在", resource, id))
}
