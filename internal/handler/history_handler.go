package handler

import (
	"net/http"
	"strconv"

	"kb-portal/internal/dto"
	"kb-portal/internal/service"

	"github.com/gin-gonic/gin"
)

type HistoryHandler struct {
	svc *service.HistoryService
}

func NewHistoryHandler(svc *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{svc: svc}
}

// IngestChat 接收外部聊天历史批次
// POST /api/v1/history/chat
func (h *HistoryHandler) IngestChat(c *gin.Context) {
	var req dto.IngestChatHistoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	accepted, err := h.svc.IngestChatHistory(c.Request.Context(), req.SourceID, req.Items)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"accepted": accepted}})
}

// IngestSearch 接收外部搜索历史批次
// POST /api/v1/history/search
func (h *HistoryHandler) IngestSearch(c *gin.Context) {
	var req dto.IngestSearchHistoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	accepted, err := h.svc.IngestSearchHistory(c.Request.Context(), req.SourceID, req.Items)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"accepted": accepted}})
}

// ListChat 查询已落库的对话记录
// GET /api/v1/history/chat?source_id=1&page=1&page_size=20
func (h *HistoryHandler) ListChat(c *gin.Context) {
	sourceID, _ := strconv.Atoi(c.DefaultQuery("source_id", "0"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	rows, total, err := h.svc.ListChatHistory(c.Request.Context(), uint(sourceID), page, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"total": total, "list": rows}})
}
