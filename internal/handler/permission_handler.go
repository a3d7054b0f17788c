package handler

import (
	"net/http"
	"strconv"

	"kb-portal/internal/dto"
	"kb-portal/internal/model"
	"kb-portal/internal/service"

	"github.com/gin-gonic/gin"
)

type PermissionHandler struct {
	svc *service.PermissionService
}

func NewPermissionHandler(svc *service.PermissionService) *PermissionHandler {
	return &PermissionHandler{svc: svc}
}

// SetDocumentPermission 设置文档桶授权 (管理端)
// POST /api/v1/permissions/documents
func (h *PermissionHandler) SetDocumentPermission(c *gin.Context) {
	var req dto.SetDocumentPermissionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	row, err := h.svc.SetDocumentPermission(c.Request.Context(),
		req.EntityType, req.EntityID, req.BucketID,
		model.PermissionLevel(req.PermissionLevel), currentActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": row})
}

// SetPromptPermission 设置提示词授权 (管理端)
// POST /api/v1/permissions/prompts
func (h *PermissionHandler) SetPromptPermission(c *gin.Context) {
	var req dto.SetPromptPermissionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	row, err := h.svc.SetPromptPermission(c.Request.Context(),
		req.EntityType, req.EntityID,
		model.PermissionLevel(req.PermissionLevel), currentActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": row})
}

// GetEffectiveDocumentPermission 查询用户在某桶上的有效级别
// GET /api/v1/permissions/documents/effective?user_id=1&bucket_id=xxx
func (h *PermissionHandler) GetEffectiveDocumentPermission(c *gin.Context) {
	userID, err := strconv.Atoi(c.Query("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "非法用户 ID"})
		return
	}
	bucket := c.Query("bucket_id")

	level, err := h.svc.ResolveDocumentPermission(c.Request.Context(), uint(userID), bucket)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.EffectivePermissionResp{
		UserID:          uint(userID),
		BucketID:        bucket,
		PermissionLevel: int(level),
		LevelName:       level.String(),
	}})
}

// GetEffectivePromptPermission 查询用户对提示词的有效级别
// GET /api/v1/permissions/prompts/effective?user_id=1
func (h *PermissionHandler) GetEffectivePromptPermission(c *gin.Context) {
	userID, err := strconv.Atoi(c.Query("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "非法用户 ID"})
		return
	}

	level, err := h.svc.ResolvePromptPermission(c.Request.Context(), uint(userID))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.EffectivePermissionResp{
		UserID:          uint(userID),
		PermissionLevel: int(level),
		LevelName:       level.String(),
	}})
}
