package service

import (
	"context"
	"testing"

	"kb-portal/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 管理员无视授权记录，始终 FULL
func TestResolveDocumentPermissionAdminOverride(t *testing.T) {
	d := newTestData(t)
	perm := NewPermissionService(d, NewTeamService(d), NewAuditService(d))
	ctx := context.Background()

	admin := createUser(t, d, "admin", model.RoleAdmin)

	level, err := perm.ResolveDocumentPermission(ctx, admin.ID, "bucket-a")
	require.NoError(t, err)
	assert.Equal(t, model.PermissionFull, level)

	// 即使显式写了一条低级别授权，admin 仍然 FULL
	_, err = perm.SetDocumentPermission(ctx, model.EntityTypeUser, admin.ID, "bucket-a", model.PermissionView, Actor{ID: admin.ID})
	require.NoError(t, err)

	level, err = perm.ResolveDocumentPermission(ctx, admin.ID, "bucket-a")
	require.NoError(t, err)
	assert.Equal(t, model.PermissionFull, level)
}

// 无授权记录返回 NONE，不是错误
func TestGetDocumentPermissionMissingRow(t *testing.T) {
	d := newTestData(t)
	perm := NewPermissionService(d, NewTeamService(d), NewAuditService(d))

	level, err := perm.GetDocumentPermission(context.Background(), model.EntityTypeUser, 999, "bucket-a")
	require.NoError(t, err)
	assert.Equal(t, model.PermissionNone, level)
}

// 有效级别 = max(直接授权, leader 团队授权)；member 团队不参与
func TestResolveDocumentPermissionLeaderOnly(t *testing.T) {
	d := newTestData(t)
	perm := NewPermissionService(d, NewTeamService(d), NewAuditService(d))
	ctx := context.Background()

	user := createUser(t, d, "alice", model.RoleUser)
	leaderTeam := createTeam(t, d, "team-leader")
	memberTeam := createTeam(t, d, "team-member")
	joinTeam(t, d, user.ID, leaderTeam.ID, model.TeamRoleLeader)
	joinTeam(t, d, user.ID, memberTeam.ID, model.TeamRoleMember)

	actor := Actor{ID: 1}

	// 直接授权 VIEW
	_, err := perm.SetDocumentPermission(ctx, model.EntityTypeUser, user.ID, "docs", model.PermissionView, actor)
	require.NoError(t, err)

	// leader 团队 UPLOAD -> 有效级别提升到 UPLOAD
	_, err = perm.SetDocumentPermission(ctx, model.EntityTypeTeam, leaderTeam.ID, "docs", model.PermissionUpload, actor)
	require.NoError(t, err)

	level, err := perm.ResolveDocumentPermission(ctx, user.ID, "docs")
	require.NoError(t, err)
	assert.Equal(t, model.PermissionUpload, level)

	// member 团队给 FULL 也不生效 (不对称规则：文档权限只有 leader 继承)
	_, err = perm.SetDocumentPermission(ctx, model.EntityTypeTeam, memberTeam.ID, "docs", model.PermissionFull, actor)
	require.NoError(t, err)

	level, err = perm.ResolveDocumentPermission(ctx, user.ID, "docs")
	require.NoError(t, err)
	assert.Equal(t, model.PermissionUpload, level)

	// 升为 leader 后立即生效 (成员关系不缓存)
	require.NoError(t, d.DB.Model(&model.UserTeam{}).
		Where("team_id = ? AND user_id = ?", memberTeam.ID, user.ID).
		Update("role", model.TeamRoleLeader).Error)

	level, err = perm.ResolveDocumentPermission(ctx, user.ID, "docs")
	require.NoError(t, err)
	assert.Equal(t, model.PermissionFull, level)
}

// 团队授权变更对下一次解析立即可见
func TestResolveDocumentPermissionFreshMembership(t *testing.T) {
	d := newTestData(t)
	perm := NewPermissionService(d, NewTeamService(d), NewAuditService(d))
	ctx := context.Background()

	user := createUser(t, d, "bob", model.RoleUser)
	team := createTeam(t, d, "ops")

	_, err := perm.SetDocumentPermission(ctx, model.EntityTypeTeam, team.ID, "docs", model.PermissionFull, Actor{ID: 1})
	require.NoError(t, err)

	// 入队前：NONE
	level, err := perm.ResolveDocumentPermission(ctx, user.ID, "docs")
	require.NoError(t, err)
	assert.Equal(t, model.PermissionNone, level)

	// 以 leader 身份入队后：立即 FULL
	joinTeam(t, d, user.ID, team.ID, model.TeamRoleLeader)

	level, err = perm.ResolveDocumentPermission(ctx, user.ID, "docs")
	require.NoError(t, err)
	assert.Equal(t, model.PermissionFull, level)
}

// upsert：重复设置同一主体只留一条记录
func TestSetDocumentPermissionUpsert(t *testing.T) {
	d := newTestData(t)
	perm := NewPermissionService(d, NewTeamService(d), NewAuditService(d))
	ctx := context.Background()

	actor := Actor{ID: 7, Email: "admin@example.com"}

	_, err := perm.SetDocumentPermission(ctx, model.EntityTypeUser, 42, "docs", model.PermissionUpload, actor)
	require.NoError(t, err)
	_, err = perm.SetDocumentPermission(ctx, model.EntityTypeUser, 42, "docs", model.PermissionUpload, actor)
	require.NoError(t, err)

	var count int64
	d.DB.Model(&model.DocumentPermission{}).
		Where("entity_type = ? AND entity_id = ? AND bucket_id = ?", model.EntityTypeUser, 42, "docs").
		Count(&count)
	assert.Equal(t, int64(1), count)

	// 改级别走更新，不产生新行
	row, err := perm.SetDocumentPermission(ctx, model.EntityTypeUser, 42, "docs", model.PermissionFull, actor)
	require.NoError(t, err)
	assert.Equal(t, model.PermissionFull, row.PermissionLevel)

	d.DB.Model(&model.DocumentPermission{}).
		Where("entity_type = ? AND entity_id = ? AND bucket_id = ?", model.EntityTypeUser, 42, "docs").
		Count(&count)
	assert.Equal(t, int64(1), count)
}

// 非法级别在落库前被拒绝
func TestSetDocumentPermissionInvalidLevel(t *testing.T) {
	d := newTestData(t)
	perm := NewPermissionService(d, NewTeamService(d), NewAuditService(d))

	_, err := perm.SetDocumentPermission(context.Background(), model.EntityTypeUser, 1, "docs", model.PermissionLevel(9), Actor{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	var count int64
	d.DB.Model(&model.DocumentPermission{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

// 每次成功的 set 都落一条审计记录
func TestSetDocumentPermissionAudit(t *testing.T) {
	d := newTestData(t)
	perm := NewPermissionService(d, NewTeamService(d), NewAuditService(d))

	actor := Actor{ID: 3, Email: "ops@example.com", IP: "10.0.0.1"}
	_, err := perm.SetDocumentPermission(context.Background(), model.EntityTypeUser, 5, "docs", model.PermissionView, actor)
	require.NoError(t, err)

	var logs []model.AuditLog
	require.NoError(t, d.DB.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "permission.document.set", logs[0].Action)
	assert.Equal(t, uint(3), logs[0].ActorID)
	assert.Equal(t, "user:5:docs", logs[0].ResourceID)
	assert.Equal(t, "10.0.0.1", logs[0].IP)
}

// 提示词授权：同样的 leader-only 规则，无 bucket 维度
func TestResolvePromptPermission(t *testing.T) {
	d := newTestData(t)
	perm := NewPermissionService(d, NewTeamService(d), NewAuditService(d))
	ctx := context.Background()

	user := createUser(t, d, "carol", model.RoleUser)
	team := createTeam(t, d, "writers")
	joinTeam(t, d, user.ID, team.ID, model.TeamRoleLeader)

	_, err := perm.SetPromptPermission(ctx, model.EntityTypeTeam, team.ID, model.PermissionUpload, Actor{ID: 1})
	require.NoError(t, err)

	level, err := perm.ResolvePromptPermission(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PermissionUpload, level)

	// 零团队的未知用户解析为 NONE
	level, err = perm.ResolvePromptPermission(ctx, 9999)
	require.NoError(t, err)
	assert.Equal(t, model.PermissionNone, level)
}
