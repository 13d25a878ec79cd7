package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"collabtrack/pkg/errors"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Reason  string      `json:"reason,omitempty"`
	Message string      `json:"message"`
	Detail  string      `json:"detail,omitempty"` // 详细错误信息（可选）
	Data    interface{} `json:"data,omitempty"`
}

// PageResponse 分页响应结构
type PageResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	Size    int         `json:"size"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    errors.CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage 带消息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    errors.CodeSuccess,
		Message: message,
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    errors.CodeSuccess,
		Message: message,
		Data:    data,
	})
}

// PartialSuccess 部分成功响应, 主体已写入但附属操作有失败项
func PartialSuccess(c *gin.Context, reason, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    errors.CodePartialSuccess,
		Reason:  reason,
		Message: message,
		Data:    data,
	})
}

// PageSuccess 分页成功响应
func PageSuccess(c *gin.Context, data interface{}, total int64, page, size int) {
	c.JSON(http.StatusOK, PageResponse{
		Code:    errors.CodeSuccess,
		Message: "success",
		Data:    data,
		Total:   total,
		Page:    page,
		Size:    size,
	})
}

// Error 错误响应
// HTTP 状态码由业务错误码推导, 底层错误信息只写日志不返回给调用方
func Error(c *gin.Context, err error) {
	ErrorWithData(c, err, nil)
}

// ErrorWithData 错误响应并附带数据（如 AlreadyMember 时返回已有成员）
func ErrorWithData(c *gin.Context, err error, data interface{}) {
	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.ErrInternalError.WithErr(err)
	}
	if appErr.Err != nil {
		_ = c.Error(appErr.Err)
	}

	c.JSON(appErr.HTTPStatus(), Response{
		Code:    appErr.Code,
		Reason:  appErr.Reason,
		Message: appErr.Message,
		Data:    data,
	})
}

// ErrorWithCode 自定义错误响应
func ErrorWithCode(c *gin.Context, code int, message string) {
	Error(c, errors.New(code, message))
}

// ErrorWithDetail 带详细信息的错误响应
func ErrorWithDetail(c *gin.Context, code int, message, detail string) {
	appErr := errors.New(code, message)
	c.JSON(appErr.HTTPStatus(), Response{
		Code:    code,
		Reason:  errors.ReasonValidation,
		Message: message,
		Detail:  detail,
	})
}

// BindError 请求绑定失败
func BindError(c *gin.Context, err error) {
	ErrorWithDetail(c, errors.CodeBadRequest, "Invalid request", FormatValidationError(err))
}
