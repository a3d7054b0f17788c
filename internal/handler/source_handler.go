package handler

import (
	"net/http"
	"strconv"

	"kb-portal/internal/dto"
	"kb-portal/internal/model"
	"kb-portal/internal/service"

	"github.com/gin-gonic/gin"
)

type SourceHandler struct {
	svc  *service.SourceService
	auth service.AuthService
}

func NewSourceHandler(svc *service.SourceService, auth service.AuthService) *SourceHandler {
	return &SourceHandler{svc: svc, auth: auth}
}

// requester 解析当前请求者 (未登录返回 nil，走匿名规则)
func (h *SourceHandler) requester(c *gin.Context) *model.User {
	v, exists := c.Get("userID")
	if !exists {
		return nil
	}
	user, err := h.auth.GetUser(v.(uint))
	if err != nil {
		return nil
	}
	return user
}

// ListAvailable 列出当前用户可见的来源 (按名称排序)
// GET /api/v1/sources/available
func (h *SourceHandler) ListAvailable(c *gin.Context) {
	sources, err := h.svc.GetAvailableSources(c.Request.Context(), h.requester(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sources})
}

// Create 创建来源 (管理端)
// POST /api/v1/sources
func (h *SourceHandler) Create(c *gin.Context) {
	var req dto.CreateSourceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	src, err := h.svc.CreateSource(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": src})
}

// Update 更新来源 (管理端)
// PUT /api/v1/sources/:id
func (h *SourceHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "非法来源 ID"})
		return
	}

	var req dto.UpdateSourceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	src, err := h.svc.UpdateSource(c.Request.Context(), uint(id), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": src})
}

// Delete 删除来源 (管理端)
// DELETE /api/v1/sources/:id
func (h *SourceHandler) Delete(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	if err := h.svc.DeleteSource(c.Request.Context(), uint(id)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": "ok"})
}
