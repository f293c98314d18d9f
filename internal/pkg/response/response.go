package response

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var tagNameOnce sync.Once

// 状态码对应的默认消息
var statusMessages = map[int]string{
	http.StatusBadRequest:          "Invalid payload",
	http.StatusUnauthorized:        "Unauthorized",
	http.StatusNotFound:            "Not found",
	http.StatusConflict:            "Conflict",
	http.StatusTooManyRequests:     "Too many requests",
	http.StatusInternalServerError: "Internal server error",
	http.StatusBadGateway:          "Upstream service error",
}

// ErrorResponse 统一错误结构
type ErrorResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

// FieldError 单个字段的校验失败信息
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

// Success 200 响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created 201 响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// Error 错误响应，message 为空时使用默认消息
func Error(c *gin.Context, status int, message string) {
	if message == "" {
		message = statusMessages[status]
	}
	c.JSON(status, ErrorResponse{Error: message})
}

// ParamError 参数错误，校验失败时按字段给出明细
func ParamError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   statusMessages[http.StatusBadRequest],
		Details: fieldErrors(err),
	})
}

// AuthError 认证失败，不区分缺失、无效和过期
func AuthError(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// NotFoundError 资源不存在
func NotFoundError(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// ConflictError 资源冲突
func ConflictError(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

// QuotaError 超出限流配额
func QuotaError(c *gin.Context, message string) {
	Error(c, http.StatusTooManyRequests, message)
}

// ServerError 服务器错误
func ServerError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// UpstreamError 上游模型服务失败
func UpstreamError(c *gin.Context, message string) {
	Error(c, http.StatusBadGateway, message)
}

func fieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "body", Rule: "json", Message: err.Error()}}
	}

	details := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, FieldError{
			Field: fe.Field(),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
	}
	return details
}

// UseJSONFieldNames 让校验错误里的字段名使用 json tag
func UseJSONFieldNames() {
	tagNameOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}
