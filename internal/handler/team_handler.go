package handler

import (
	"net/http"
	"strconv"

	"kb-portal/internal/dto"
	"kb-portal/internal/model"
	"kb-portal/internal/service"

	"github.com/gin-gonic/gin"
)

type TeamHandler struct {
	svc *service.TeamService
}

func NewTeamHandler(svc *service.TeamService) *TeamHandler {
	return &TeamHandler{svc: svc}
}

// Create 创建团队
// POST /api/v1/teams
func (h *TeamHandler) Create(c *gin.Context) {
	var req dto.CreateTeamReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	team, err := h.svc.CreateTeam(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": team})
}

// List 团队列表
// GET /api/v1/teams
func (h *TeamHandler) List(c *gin.Context) {
	teams, err := h.svc.ListTeams(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": teams})
}

// AddMember 添加团队成员
// POST /api/v1/teams/:id/members
func (h *TeamHandler) AddMember(c *gin.Context) {
	teamID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "非法团队 ID"})
		return
	}

	var req dto.AddMemberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Role == "" {
		req.Role = model.TeamRoleMember
	}

	if err := h.svc.AddMember(c.Request.Context(), uint(teamID), req.UserID, req.Role); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": "ok"})
}

// UpdateMemberRole 调整成员角色
// PUT /api/v1/teams/:id/members/:userId
func (h *TeamHandler) UpdateMemberRole(c *gin.Context) {
	teamID, _ := strconv.Atoi(c.Param("id"))
	userID, _ := strconv.Atoi(c.Param("userId"))

	var req dto.UpdateMemberRoleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.UpdateMemberRole(c.Request.Context(), uint(teamID), uint(userID), req.Role); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": "ok"})
}

// RemoveMember 移出成员
// DELETE /api/v1/teams/:id/members/:userId
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	teamID, _ := strconv.Atoi(c.Param("id"))
	userID, _ := strconv.Atoi(c.Param("userId"))

	if err := h.svc.RemoveMember(c.Request.Context(), uint(teamID), uint(userID)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": "ok"})
}

// Delete 删除团队
// DELETE /api/v1/teams/:id
func (h *TeamHandler) Delete(c *gin.Context) {
	teamID, _ := strconv.Atoi(c.Param("id"))

	if err := h.svc.DeleteTeam(c.Request.Context(), uint(teamID)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": "ok"})
}
