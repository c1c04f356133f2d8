package response

import (
	"errors"
	"net/http"

	"poster_shop/pkg/apperr"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`    // 业务码
	Message string      `json:"message"` // 提示信息
	Data    interface{} `json:"data"`    // 数据
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, httpCode int, errCode int, msg string) {
	c.JSON(httpCode, Response{
		Code:    errCode,
		Message: msg,
		Data:    nil,
	})
}

// FromError 根据错误类别选择 HTTP 状态码和业务码
func FromError(c *gin.Context, err error) {
	httpCode, errCode := Classify(err)
	msg := err.Error()
	if httpCode == http.StatusInternalServerError {
		msg = "internal server error"
	}
	Error(c, httpCode, errCode, msg)
}

// Classify maps an error kind to (http status, business code).
func Classify(err error) (int, int) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		if apperr.FieldOf(err) == "status" {
			return http.StatusBadRequest, ErrInvalidStatus
		}
		return http.StatusBadRequest, ErrInvalidParam
	case errors.Is(err, apperr.ErrUnknownKey):
		return http.StatusBadRequest, ErrUnknownCatalog
	case errors.Is(err, apperr.ErrInvalidFileType):
		return http.StatusBadRequest, ErrInvalidFileType
	case errors.Is(err, apperr.ErrAuthentication):
		return http.StatusBadRequest, ErrSignatureInvalid
	case errors.Is(err, apperr.ErrMalformedEvent):
		return http.StatusBadRequest, ErrMalformedEvent
	case errors.Is(err, apperr.ErrNotFound):
		if apperr.FieldOf(err) == "upload" {
			return http.StatusNotFound, ErrUploadNotFound
		}
		return http.StatusNotFound, ErrOrderNotFound
	case errors.Is(err, apperr.ErrUpstream):
		return http.StatusBadGateway, ErrPaymentUpstream
	default:
		return http.StatusInternalServerError, ErrServerInternal
	}
}
