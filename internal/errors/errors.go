package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrCode represents an error code
type ErrCode string

const (
	ErrCodeAuth         ErrCode = "AUTH"
	ErrCodeNetwork      ErrCode = "NETWORK"
	ErrCodeNotFound     ErrCode = "NOT_FOUND"
	ErrCodeRateLimited  ErrCode = "RATE_LIMITED"
	ErrCodeUnsearchable ErrCode = "UNSEARCHABLE"
	ErrCodeConfig       ErrCode = "CONFIG"
	ErrCodeBadRequest   ErrCode = "BAD_REQUEST"
	ErrCodeInternal     ErrCode = "INTERNAL_ERROR"
)

// AppError represents an application error
type AppError struct {
	Code    ErrCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAuthError creates a new credential acquisition error
func NewAuthError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeAuth,
		Message: message,
		Err:     err,
	}
}

// NewNetworkError creates a new error for a GitHub call that could not be completed
func NewNetworkError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeNetwork,
		Message: message,
		Err:     err,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewRateLimitedError creates a new rate limited error
func NewRateLimitedError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeRateLimited,
		Message: message,
		Err:     err,
	}
}

// NewUnsearchableError creates an error for a query whose users cannot be searched
func NewUnsearchableError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeUnsearchable,
		Message: message,
		Err:     err,
	}
}

// NewConfigError creates a new configuration error
func NewConfigError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeConfig,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// NewBadRequestError creates a new bad request error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
	}
}

// CodeOf returns the code of the first AppError in the chain, or ErrCodeInternal
func CodeOf(err error) ErrCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

func hasCode(err error, code ErrCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// IsAuth checks if the error is a credential error
func IsAuth(err error) bool {
	return hasCode(err, ErrCodeAuth)
}

// IsNetwork checks if the error is a network error
func IsNetwork(err error) bool {
	return hasCode(err, ErrCodeNetwork)
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

// IsRateLimited checks if the error is a rate limited error
func IsRateLimited(err error) bool {
	return hasCode(err, ErrCodeRateLimited)
}

// IsUnsearchable checks if the error is an unsearchable resource error
func IsUnsearchable(err error) bool {
	return hasCode(err, ErrCodeUnsearchable)
}
