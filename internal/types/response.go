package types

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool         `json:"success"`
	Data    any          `json:"data,omitempty"`
	Error   string       `json:"error,omitempty"`
	Message string       `json:"message,omitempty"`
	Details []FieldError `json:"details,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func OK(ctx *gin.Context, data any) {
	ctx.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func OKMessage(ctx *gin.Context, message string, data any) {
	ctx.JSON(http.StatusOK, Response{Success: true, Message: message, Data: data})
}

func Created(ctx *gin.Context, data any) {
	ctx.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

func Fail(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, Response{Success: false, Error: message})
}

func Unauthorized(ctx *gin.Context) {
	ctx.JSON(http.StatusUnauthorized, Response{Success: false, Error: "未登录或登录已过期"})
}

func NotFound(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusNotFound, Response{Success: false, Error: message})
}

func ServerError(ctx *gin.Context) {
	ctx.JSON(http.StatusInternalServerError, Response{Success: false, Error: "服务器内部错误"})
}

// ValidationFailed maps validator.ValidationErrors to field-level messages.
func ValidationFailed(ctx *gin.Context, err error) {
	var verrs validator.ValidationErrors

	if errors.As(err, &verrs) {
		details := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
		}
		ctx.JSON(http.StatusBadRequest, Response{Success: false, Error: "参数校验失败", Details: details})
		return
	}

	ctx.JSON(http.StatusBadRequest, Response{Success: false, Error: "请求格式错误"})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "该字段为必填项"
	case "email":
		return "邮箱格式不正确"
	case "min":
		return fmt.Sprintf("不能小于 %s", fe.Param())
	case "max":
		return fmt.Sprintf("不能大于 %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("取值必须是 %s 之一", fe.Param())
	case "datetime":
		return "时间格式不正确"
	default:
		return "取值不合法"
	}
}
