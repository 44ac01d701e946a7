// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "email-draft-ai-api/pkg/errors"
)

// ErrorResponse 错误响应结构，error 字段为面向调用方的信息
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Code    string `json:"code,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

// Success 返回 200 响应
func Success[T any](c *gin.Context, data T) {
	c.JSON(http.StatusOK, data)
}

// FromError 按 AppError 的状态码与信息输出错误响应
func FromError(c *gin.Context, err error) {
	appErr := apperrors.AsAppError(err)
	c.JSON(appErr.HTTPStatus, ErrorResponse{
		Error:   appErr.Message,
		Details: appErr.Detail,
		Code:    string(appErr.Code),
		TraceID: c.GetString("trace_id"),
	})
}

// AbortWithError 中间件中使用，终止后续处理
func AbortWithError(c *gin.Context, err error) {
	FromError(c, err)
	c.Abort()
}
