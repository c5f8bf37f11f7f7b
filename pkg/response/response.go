package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sunflower-post/backend/pkg/logger"
)

// Response 统一响应体
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "ok", Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: 0, Message: "created", Data: data})
}

func Fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Response{Code: status, Message: msg})
}

func BadRequest(c *gin.Context, msg string) { Fail(c, http.StatusBadRequest, msg) }

func Unauthorized(c *gin.Context, msg string) { Fail(c, http.StatusUnauthorized, msg) }

func Forbidden(c *gin.Context, msg string) { Fail(c, http.StatusForbidden, msg) }

func NotFound(c *gin.Context, msg string) { Fail(c, http.StatusNotFound, msg) }

func Conflict(c *gin.Context, msg string) { Fail(c, http.StatusConflict, msg) }

func TooManyRequests(c *gin.Context) { Fail(c, http.StatusTooManyRequests, "too many requests") }

// InternalError 记录错误并返回通用提示，不向客户端暴露细节
func InternalError(c *gin.Context, err error) {
	logger.Error("internal error",
		zap.Error(err),
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
	)
	_ = c.Error(err)
	Fail(c, http.StatusInternalServerError, "internal server error")
}
