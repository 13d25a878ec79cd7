package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// 错误码
const (
	CodeSuccess             = 200
	CodePartialSuccess      = 206 // 部分成功
	CodeBadRequest          = 400
	CodeUnauthorized        = 401
	CodeForbidden           = 403
	CodeNotFound            = 404
	CodeConflict            = 409
	CodeTooManyRequests     = 429
	CodeInternalError       = 500
	CodeDatabaseError       = 501
	CodeUpstreamUnavailable = 503
)

// 错误原因, 同一错误码下用于区分具体业务冲突
const (
	ReasonAlreadyMember       = "already_member"
	ReasonAlreadyExists       = "already_exists"
	ReasonLastAdminProtected  = "last_admin_protected"
	ReasonIncompleteWorkspace = "incomplete_workspace_creation"
	ReasonPartialMembership   = "partial_membership_failure"
	ReasonSelfAction          = "self_action"
	ReasonValidation          = "validation_error"
)

// AppError 应用错误
type AppError struct {
	Code    int    `json:"code"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按 Code + Reason 比较, 包装后的副本依然满足 errors.Is
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Reason == t.Reason
}

// HTTPStatus 错误码对应的HTTP状态码
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeUpstreamUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// New 创建新错误
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewWithReason 创建带原因的错误
func NewWithReason(code int, reason, message string) *AppError {
	return &AppError{
		Code:    code,
		Reason:  reason,
		Message: message,
	}
}

// Wrap 包装错误
func Wrap(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithErr 复制预定义错误并附带底层错误
func (e *AppError) WithErr(err error) *AppError {
	return &AppError{
		Code:    e.Code,
		Reason:  e.Reason,
		Message: e.Message,
		Err:     err,
	}
}

// Validation 字段校验错误, 消息中带字段名
func Validation(field, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    CodeBadRequest,
		Reason:  ReasonValidation,
		Message: fmt.Sprintf("field '%s' %s", field, fmt.Sprintf(format, args...)),
	}
}

// Required 必填字段缺失
func Required(field string) *AppError {
	return Validation(field, "is required")
}

// As 取出 AppError
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// 预定义错误
var (
	ErrBadRequest          = New(CodeBadRequest, "Invalid request")
	ErrUnauthenticated     = New(CodeUnauthorized, "Authentication required")
	ErrAccessDenied        = New(CodeForbidden, "Access denied")
	ErrNotFound            = New(CodeNotFound, "Resource not found")
	ErrInternalError       = New(CodeInternalError, "Internal server error")
	ErrDatabaseError       = New(CodeDatabaseError, "Internal server error")
	ErrUpstreamUnavailable = New(CodeUpstreamUnavailable, "Service temporarily unavailable, please retry")
	ErrTooManyRequests     = New(CodeTooManyRequests, "Too many requests, please try again later")

	ErrAlreadyExists               = NewWithReason(CodeConflict, ReasonAlreadyExists, "Resource already exists")
	ErrAlreadyMember               = NewWithReason(CodeConflict, ReasonAlreadyMember, "User is already a member")
	ErrLastAdminProtected          = NewWithReason(CodeConflict, ReasonLastAdminProtected, "The last admin of a workspace cannot be removed or demoted")
	ErrIncompleteWorkspaceCreation = NewWithReason(CodeInternalError, ReasonIncompleteWorkspace, "Workspace could not be created")
	ErrSelfAction                  = NewWithReason(CodeBadRequest, ReasonSelfAction, "This action cannot be performed on your own account")

	ErrInvalidCredentials = New(CodeUnauthorized, "Invalid credentials")
	ErrInvalidToken       = New(CodeUnauthorized, "Invalid token")
	ErrTokenExpired       = New(CodeUnauthorized, "Token expired")
	ErrUserDisabled       = New(CodeForbidden, "User is disabled")
)
