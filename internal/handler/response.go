package handler

import (
	"errors"
	"net/http"

	"kb-portal/internal/service"

	"github.com/gin-gonic/gin"
)

// fail 统一错误映射：哨兵错误 -> HTTP 状态码
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, service.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrRemote):
		// 提示用户优先检查服务器连接，而不是笼统的失败
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// currentUserID 从 Gin Context 取登录用户 ID (JWTAuth 塞入)
func currentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未登录"})
		return 0, false
	}
	return v.(uint), true
}

// currentActor 组装审计用的操作者上下文
func currentActor(c *gin.Context) service.Actor {
	actor := service.Actor{IP: c.ClientIP()}
	if v, ok := c.Get("userID"); ok {
		actor.ID = v.(uint)
	}
	if v, ok := c.Get("username"); ok {
		actor.Email = v.(string)
	}
	return actor
}
