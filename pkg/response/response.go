package response

import (
	"net/http"

	"gigbook/pkg/apperr"

	"github.com/gin-gonic/gin"
)

const (
	CodeSuccess      = 0
	CodeParamError   = 400
	CodeUnauthorized = 401
	CodeForbidden    = 403
	CodeNotFound     = 404
	CodeServerError  = 500
)

const (
	CodeInvalidState = 1001
	CodeConflict     = 1002
	CodeBlocked      = 1003
)

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
	})
}

func ParamError(c *gin.Context, message string) {
	Error(c, CodeParamError, message)
}

func ServerError(c *gin.Context, message string) {
	Error(c, CodeServerError, message)
}

// BusinessError 按错误分类映射业务码，未识别的错误一律 500
func BusinessError(c *gin.Context, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		Error(c, CodeNotFound, err.Error())
	case apperr.KindUnauthorized:
		Error(c, CodeUnauthorized, err.Error())
	case apperr.KindForbidden:
		Error(c, CodeForbidden, err.Error())
	case apperr.KindValidation:
		Error(c, CodeParamError, err.Error())
	case apperr.KindInvalidState:
		Error(c, CodeInvalidState, err.Error())
	case apperr.KindConflict:
		Error(c, CodeConflict, err.Error())
	case apperr.KindBlocked:
		Error(c, CodeBlocked, err.Error())
	default:
		ServerError(c, err.Error())
	}
}
