package service

import (
	"context"
	"testing"

	"kb-portal/internal/dto"
	"kb-portal/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 匿名请求只看 public，用户/团队授权一律忽略
func TestIsAccessibleAnonymous(t *testing.T) {
	d := newTestData(t)
	svc := NewSourceService(d, NewTeamService(d))
	ctx := context.Background()

	acPrivate := model.AccessControl{Public: false, UserIDs: []uint{1}, TeamIDs: []uint{2}}
	acPublic := model.AccessControl{Public: true}

	ok, err := svc.IsAccessible(ctx, acPrivate, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.IsAccessible(ctx, acPublic, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

// admin 短路，任何 ACL 都放行
func TestIsAccessibleAdminOverride(t *testing.T) {
	d := newTestData(t)
	svc := NewSourceService(d, NewTeamService(d))

	admin := createUser(t, d, "admin", model.RoleAdmin)

	ok, err := svc.IsAccessible(context.Background(), model.AccessControl{Public: false}, admin)
	require.NoError(t, err)
	assert.True(t, ok)
}

// 来源 ACL 的团队门控：普通 member 也算 (与文档权限 leader-only 不同)
func TestIsAccessibleTeamMembership(t *testing.T) {
	d := newTestData(t)
	svc := NewSourceService(d, NewTeamService(d))
	ctx := context.Background()

	user := createUser(t, d, "u1", model.RoleUser)
	team := createTeam(t, d, "t1")

	ac := model.AccessControl{Public: false, TeamIDs: []uint{team.ID}}

	// 入队前不可见
	ok, err := svc.IsAccessible(ctx, ac, user)
	require.NoError(t, err)
	assert.False(t, ok)

	// 以 member 身份入队后立即可见
	joinTeam(t, d, user.ID, team.ID, model.TeamRoleMember)

	ok, err = svc.IsAccessible(ctx, ac, user)
	require.NoError(t, err)
	assert.True(t, ok)
}

// 可见列表按名称升序，且逐条套用 ACL
func TestGetAvailableSources(t *testing.T) {
	d := newTestData(t)
	svc := NewSourceService(d, NewTeamService(d))
	ctx := context.Background()

	user := createUser(t, d, "u1", model.RoleUser)
	team := createTeam(t, d, "t1")
	joinTeam(t, d, user.ID, team.ID, model.TeamRoleMember)

	mustCreate := func(req dto.CreateSourceReq) {
		_, err := svc.CreateSource(ctx, req)
		require.NoError(t, err)
	}

	mustCreate(dto.CreateSourceReq{Type: model.SourceTypeChat, Name: "Zeta Bot",
		AccessControl: model.AccessControl{Public: true}})
	mustCreate(dto.CreateSourceReq{Type: model.SourceTypeChat, Name: "HR Bot",
		AccessControl: model.AccessControl{TeamIDs: []uint{team.ID}}})
	mustCreate(dto.CreateSourceReq{Type: model.SourceTypeSearch, Name: "Secret Search",
		AccessControl: model.AccessControl{UserIDs: []uint{9999}}})

	sources, err := svc.GetAvailableSources(ctx, user)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	// 名称升序
	assert.Equal(t, "HR Bot", sources[0].Name)
	assert.Equal(t, "Zeta Bot", sources[1].Name)

	// 匿名只看到 public
	sources, err = svc.GetAvailableSources(ctx, nil)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "Zeta Bot", sources[0].Name)
}

// (name, type) 冲突拒绝；同名不同类型允许
func TestCreateSourceNameTypeUnique(t *testing.T) {
	d := newTestData(t)
	svc := NewSourceService(d, NewTeamService(d))
	ctx := context.Background()

	_, err := svc.CreateSource(ctx, dto.CreateSourceReq{Type: model.SourceTypeChat, Name: "Docs"})
	require.NoError(t, err)

	_, err = svc.CreateSource(ctx, dto.CreateSourceReq{Type: model.SourceTypeChat, Name: "Docs"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.CreateSource(ctx, dto.CreateSourceReq{Type: model.SourceTypeSearch, Name: "Docs"})
	require.NoError(t, err)
}

// 改名撞上已有 (name, type) 同样拒绝
func TestUpdateSourceRenameConflict(t *testing.T) {
	d := newTestData(t)
	svc := NewSourceService(d, NewTeamService(d))
	ctx := context.Background()

	_, err := svc.CreateSource(ctx, dto.CreateSourceReq{Type: model.SourceTypeChat, Name: "A"})
	require.NoError(t, err)
	src, err := svc.CreateSource(ctx, dto.CreateSourceReq{Type: model.SourceTypeChat, Name: "B"})
	require.NoError(t, err)

	_, err = svc.UpdateSource(ctx, src.ID, dto.UpdateSourceReq{Name: "A"})
	assert.ErrorIs(t, err, ErrConflict)
}

// 非法来源类型在落库前被拒绝
func TestCreateSourceInvalidType(t *testing.T) {
	d := newTestData(t)
	svc := NewSourceService(d, NewTeamService(d))

	_, err := svc.CreateSource(context.Background(), dto.CreateSourceReq{Type: "wiki", Name: "X"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

// ACL 列更新后读回仍是结构体 (存储边界一次性解析)
func TestSourceAccessControlRoundTrip(t *testing.T) {
	d := newTestData(t)
	svc := NewSourceService(d, NewTeamService(d))
	ctx := context.Background()

	src, err := svc.CreateSource(ctx, dto.CreateSourceReq{
		Type: model.SourceTypeChat, Name: "RT",
		AccessControl: model.AccessControl{Public: true, TeamIDs: []uint{1, 2}, UserIDs: []uint{3}},
	})
	require.NoError(t, err)

	var got model.KnowledgeBaseSource
	require.NoError(t, d.DB.First(&got, src.ID).Error)
	assert.True(t, got.AccessControl.Public)
	assert.Equal(t, []uint{1, 2}, got.AccessControl.TeamIDs)
	assert.Equal(t, []uint{3}, got.AccessControl.UserIDs)
}
