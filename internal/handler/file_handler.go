package handler

import (
	"net/http"

	"kb-portal/internal/service"

	"github.com/gin-gonic/gin"
)

type FileHandler struct {
	svc *service.FileService
}

func NewFileHandler(svc *service.FileService) *FileHandler {
	return &FileHandler{svc: svc}
}

// Upload 上传文件到文档桶
// POST /api/v1/files/upload?bucket=xxx
func (h *FileHandler) Upload(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少文件"})
		return
	}

	resp, err := h.svc.UploadFile(c.Request.Context(), userID, c.Query("bucket"), fileHeader)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// Download 下载/预览文件
// GET /api/v1/files/*object?bucket=xxx
func (h *FileHandler) Download(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	objectName := c.Param("object")
	if len(objectName) > 0 && objectName[0] == '/' {
		objectName = objectName[1:]
	}

	obj, size, err := h.svc.GetFile(c.Request.Context(), userID, c.Query("bucket"), objectName)
	if err != nil {
		fail(c, err)
		return
	}
	defer obj.Close()

	c.DataFromReader(http.StatusOK, size, "application/octet-stream", obj, nil)
}

// Delete 删除文件
// DELETE /api/v1/files/*object?bucket=xxx
func (h *FileHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	objectName := c.Param("object")
	if len(objectName) > 0 && objectName[0] == '/' {
		objectName = objectName[1:]
	}

	if err := h.svc.DeleteFile(c.Request.Context(), userID, c.Query("bucket"), objectName); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": "ok"})
}
