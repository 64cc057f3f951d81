package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/kpi_funnel/service"
)

// ApiError 自定义API错误
type ApiError struct {
	StatusCode int
	Message    string
	ErrorCode  string
}

// Error 实现error接口
func (e *ApiError) Error() string {
	return e.Message
}

// NewApiError 创建API错误
func NewApiError(message string, statusCode int, errorCode string) *ApiError {
	return &ApiError{
		StatusCode: statusCode,
		Message:    message,
		ErrorCode:  errorCode,
	}
}

// CreateNotFoundError 创建资源不存在错误
func CreateNotFoundError(resource string) *ApiError {
	return NewApiError(resource+"不存在", http.StatusNotFound, "RESOURCE_NOT_FOUND")
}

// CreateUnauthorizedError 创建未授权错误
func CreateUnauthorizedError(message string) *ApiError {
	if message == "" {
		message = "未授权访问"
	}
	return NewApiError(message, http.StatusUnauthorized, "UNAUTHORIZED")
}

// CreateBadRequestError 创建错误请求错误
func CreateBadRequestError(message string) *ApiError {
	return NewApiError(message, http.StatusBadRequest, "BAD_REQUEST")
}

// ToApiError 将任意错误转换为API错误；领域错误统一返回 422
func ToApiError(err error) *ApiError {
	var apiErr *ApiError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	if errors.Is(err, service.ErrSessionNotFound) {
		return NewApiError(err.Error(), http.StatusUnauthorized, "SESSION_EXPIRED")
	}
	if code := service.ErrorCode(err); code != "" {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, service.ErrInvalidMode) {
			status = http.StatusBadRequest
		}
		return NewApiError(err.Error(), status, code)
	}
	return NewApiError(err.Error(), http.StatusInternalServerError, "INTERNAL_ERROR")
}

// HandleError 处理错误并返回适当的响应
func HandleError(c *gin.Context, err error) {
	if c == nil || err == nil {
		return
	}
	apiErr := ToApiError(err)

	event := Logger.Warn()
	if apiErr.StatusCode >= http.StatusInternalServerError {
		event = Logger.Error()
	}
	event.Err(err).
		Str("path", c.Request.URL.Path).
		Str("method", c.Request.Method).
		Str("code", apiErr.ErrorCode).
		Msg("API错误")

	c.AbortWithStatusJSON(apiErr.StatusCode, gin.H{
		"success": false,
		"error":   apiErr.Message,
		"code":    apiErr.ErrorCode,
	})
}

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, data interface{}, message string, statusCode ...int) {
	code := http.StatusOK
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	response := gin.H{"success": true}
	if data != nil {
		response["data"] = data
	}
	if message != "" {
		response["message"] = message
	}

	c.JSON(code, response)
}
