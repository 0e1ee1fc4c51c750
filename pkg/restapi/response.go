package restapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"giftvideo-service/pkg/errno"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    errno.OK.Code,
		Message: errno.OK.Message,
		Data:    data,
	})
}

// PartialSuccess 部分成功响应（多收件人投递等批量操作）
func PartialSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusMultiStatus, Response{
		Code:    http.StatusMultiStatus,
		Message: "Partial success",
		Data:    data,
	})
}

// Failed 失败响应，根据错误码推导HTTP状态
func Failed(c *gin.Context, err error) {
	code, message := errno.DecodeErr(err)
	c.JSON(httpStatus(code), Response{
		Code:    code,
		Message: message,
	})
}

// FailedWithStatus 指定HTTP状态码的失败响应
func FailedWithStatus(c *gin.Context, status int, err error) {
	code, message := errno.DecodeErr(err)
	c.JSON(status, Response{
		Code:    code,
		Message: message,
	})
}

func httpStatus(code int) int {
	switch {
	case code == errno.OK.Code:
		return http.StatusOK
	case code >= 400 && code < 500:
		return code
	case code >= 500 && code < 511:
		return http.StatusInternalServerError
	case code == errno.ErrJobNotFound.Code, code == errno.ErrVideoExpired.Code:
		return http.StatusNotFound
	case code >= 20000:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
