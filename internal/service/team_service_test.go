package service

import (
	"context"
	"testing"

	"kb-portal/internal/dto"
	"kb-portal/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 未知用户解析为空列表，不报错
func TestGetUserTeamsUnknownUser(t *testing.T) {
	d := newTestData(t)
	svc := NewTeamService(d)

	memberships, err := svc.GetUserTeams(context.Background(), 9999)
	require.NoError(t, err)
	assert.Empty(t, memberships)
}

// 成员关系变更对下一次解析立即可见 (实时查库，无缓存)
func TestGetUserTeamsFresh(t *testing.T) {
	d := newTestData(t)
	svc := NewTeamService(d)
	ctx := context.Background()

	user := createUser(t, d, "u1", model.RoleUser)
	team := createTeam(t, d, "ops")

	memberships, err := svc.GetUserTeams(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, memberships)

	require.NoError(t, svc.AddMember(ctx, team.ID, user.ID, model.TeamRoleLeader))

	memberships, err = svc.GetUserTeams(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, memberships, 1)
	assert.Equal(t, team.ID, memberships[0].TeamID)
	assert.Equal(t, model.TeamRoleLeader, memberships[0].Role)

	require.NoError(t, svc.RemoveMember(ctx, team.ID, user.ID))

	memberships, err = svc.GetUserTeams(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, memberships)
}

// 团队名唯一
func TestCreateTeamDuplicateName(t *testing.T) {
	d := newTestData(t)
	svc := NewTeamService(d)
	ctx := context.Background()

	_, err := svc.CreateTeam(ctx, dto.CreateTeamReq{Name: "ops"})
	require.NoError(t, err)

	_, err = svc.CreateTeam(ctx, dto.CreateTeamReq{Name: "ops"})
	assert.ErrorIs(t, err, ErrConflict)
}

// AddMember 的各类前置校验
func TestAddMemberValidation(t *testing.T) {
	d := newTestData(t)
	svc := NewTeamService(d)
	ctx := context.Background()

	user := createUser(t, d, "u1", model.RoleUser)
	team := createTeam(t, d, "ops")

	// 非法角色
	err := svc.AddMember(ctx, team.ID, user.ID, "boss")
	assert.ErrorIs(t, err, ErrInvalidInput)

	// 团队/用户不存在
	err = svc.AddMember(ctx, 9999, user.ID, model.TeamRoleMember)
	assert.ErrorIs(t, err, ErrNotFound)
	err = svc.AddMember(ctx, team.ID, 9999, model.TeamRoleMember)
	assert.ErrorIs(t, err, ErrNotFound)

	// 重复添加
	require.NoError(t, svc.AddMember(ctx, team.ID, user.ID, model.TeamRoleMember))
	err = svc.AddMember(ctx, team.ID, user.ID, model.TeamRoleMember)
	assert.ErrorIs(t, err, ErrConflict)
}

// 角色升降级
func TestUpdateMemberRole(t *testing.T) {
	d := newTestData(t)
	svc := NewTeamService(d)
	ctx := context.Background()

	user := createUser(t, d, "u1", model.RoleUser)
	team := createTeam(t, d, "ops")
	require.NoError(t, svc.AddMember(ctx, team.ID, user.ID, model.TeamRoleMember))

	require.NoError(t, svc.UpdateMemberRole(ctx, team.ID, user.ID, model.TeamRoleLeader))

	memberships, err := svc.GetUserTeams(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, memberships, 1)
	assert.Equal(t, model.TeamRoleLeader, memberships[0].Role)

	// 不存在的成员关系
	err = svc.UpdateMemberRole(ctx, team.ID, 9999, model.TeamRoleLeader)
	assert.ErrorIs(t, err, ErrNotFound)

	// 非法角色
	err = svc.UpdateMemberRole(ctx, team.ID, user.ID, "boss")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

// 删除团队时级联清理成员关系
func TestDeleteTeamCascade(t *testing.T) {
	d := newTestData(t)
	svc := NewTeamService(d)
	ctx := context.Background()

	user := createUser(t, d, "u1", model.RoleUser)
	team := createTeam(t, d, "ops")
	require.NoError(t, svc.AddMember(ctx, team.ID, user.ID, model.TeamRoleMember))

	require.NoError(t, svc.DeleteTeam(ctx, team.ID))

	memberships, err := svc.GetUserTeams(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, memberships)

	err = svc.DeleteTeam(ctx, team.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
