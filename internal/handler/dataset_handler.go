package handler

import (
	"net/http"
	"strconv"

	"kb-portal/internal/dto"
	"kb-portal/internal/service"

	"github.com/gin-gonic/gin"
)

// DatasetHandler 项目/分类/版本生命周期 + RAGFlow 服务器管理
type DatasetHandler struct {
	dataset *service.DatasetService
	project *service.ProjectService
	server  *service.ServerService
}

func NewDatasetHandler(dataset *service.DatasetService, project *service.ProjectService, server *service.ServerService) *DatasetHandler {
	return &DatasetHandler{dataset: dataset, project: project, server: server}
}

// CreateProject 创建项目
// POST /api/v1/projects
func (h *DatasetHandler) CreateProject(c *gin.Context) {
	var req dto.CreateProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.project.CreateProject(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": project})
}

// ListProjects 项目列表
// GET /api/v1/projects
func (h *DatasetHandler) ListProjects(c *gin.Context) {
	projects, err := h.project.ListProjects(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": projects})
}

// CreateCategory 创建分类
// POST /api/v1/categories
func (h *DatasetHandler) CreateCategory(c *gin.Context) {
	var req dto.CreateCategoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.dataset.CreateCategory(c.Request.Context(), req.ProjectID, req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": category})
}

// DeleteCategory 删除分类 (级联清理远端数据集，尽力而为)
// DELETE /api/v1/categories/:id
func (h *DatasetHandler) DeleteCategory(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	cleanup, err := h.dataset.DeleteCategory(c.Request.Context(), uint(id), currentActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"remote_cleanup": cleanup}})
}

// CreateVersion 创建分类版本 (同步创建远端数据集，失败即中止)
// POST /api/v1/versions
func (h *DatasetHandler) CreateVersion(c *gin.Context) {
	var req dto.CreateVersionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	version, err := h.dataset.CreateVersion(c.Request.Context(), req.CategoryID, req.Version, req.ServerID, currentActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": version})
}

// ListVersions 分类下的版本列表
// GET /api/v1/categories/:id/versions
func (h *DatasetHandler) ListVersions(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	versions, err := h.dataset.ListVersions(c.Request.Context(), uint(id))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": versions})
}

// SyncVersion 拉取远端状态回填
// POST /api/v1/versions/:id/sync
func (h *DatasetHandler) SyncVersion(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	version, err := h.dataset.SyncVersion(c.Request.Context(), uint(id))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": version})
}

// ArchiveVersion 归档版本 (纯本地)
// POST /api/v1/versions/:id/archive
func (h *DatasetHandler) ArchiveVersion(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	if err := h.dataset.ArchiveVersion(c.Request.Context(), uint(id)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": "ok"})
}

// DeleteVersion 删除版本 (远端清理尽力而为)
// DELETE /api/v1/versions/:id
func (h *DatasetHandler) DeleteVersion(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	cleanup, err := h.dataset.DeleteVersion(c.Request.Context(), uint(id), currentActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"remote_cleanup": cleanup}})
}

// CreateServer 接入 RAGFlow 服务器
// POST /api/v1/servers
func (h *DatasetHandler) CreateServer(c *gin.Context) {
	var req dto.CreateServerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	server, err := h.server.CreateServer(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": server})
}

// SetServerActive 启用/停用服务器
// PUT /api/v1/servers/:id/active
func (h *DatasetHandler) SetServerActive(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var req struct {
		Active bool `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.server.SetActive(c.Request.Context(), uint(id), req.Active); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": "ok"})
}

// DeleteServer 移除服务器记录
// DELETE /api/v1/servers/:id
func (h *DatasetHandler) DeleteServer(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	if err := h.server.DeleteServer(c.Request.Context(), uint(id)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": "ok"})
}

// ListServers 服务器列表
// GET /api/v1/servers
func (h *DatasetHandler) ListServers(c *gin.Context) {
	servers, err := h.server.ListServers(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": servers})
}
