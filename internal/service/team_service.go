package service

import (
	"context"
	"fmt"
	"time"

	"kb-portal/internal/data"
	"kb-portal/internal/dto"
	"kb-portal/internal/model"

	"gorm.io/gorm"
)

type TeamService struct {
	Data *data.Data
}

func NewTeamService(data *data.Data) *TeamService {
	return &TeamService{Data: data}
}

// TeamMembership 成员关系解析结果
type TeamMembership struct {
	TeamID uint   `json:"team_id"`
	Role   string `json:"role"`
}

// GetUserTeams 解析用户当前所属的全部团队及角色
// 每次都实时查库，不做缓存：团队变更必须对下一次权限检查立即可见
// 未知用户返回空列表，不报错
func (s *TeamService) GetUserTeams(ctx context.Context, userID uint) ([]TeamMembership, error) {
	var rows []model.UserTeam
	if err := s.Data.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	memberships := make([]TeamMembership, 0, len(rows))
	for _, r := range rows {
		memberships = append(memberships, TeamMembership{TeamID: r.TeamID, Role: r.Role})
	}
	return memberships, nil
}

// CreateTeam 创建团队
func (s *TeamService) CreateTeam(ctx context.Context, req dto.CreateTeamReq) (*model.Team, error) {
	// 1. 名称唯一性检查
	var count int64
	s.Data.DB.Model(&model.Team{}).Where("name = ?", req.Name).Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("%w: 团队名称 %q 已被占用", ErrConflict, req.Name)
	}

	team := &model.Team{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.Data.DB.WithContext(ctx).Create(team).Error; err != nil {
		return nil, err
	}
	return team, nil
}

// AddMember 加入团队成员
func (s *TeamService) AddMember(ctx context.Context, teamID, userID uint, role string) error {
	// 1. 角色取值校验，落库前拒绝
	if !model.IsValidTeamRole(role) {
		return fmt.Errorf("%w: 非法团队角色 %q", ErrInvalidInput, role)
	}

	// 2. 团队与用户必须存在
	var team model.Team
	if err := s.Data.DB.First(&team, teamID).Error; err != nil {
		return fmt.Errorf("%w: 团队 %d", ErrNotFound, teamID)
	}
	var user model.User
	if err := s.Data.DB.First(&user, userID).Error; err != nil {
		return fmt.Errorf("%w: 用户 %d", ErrNotFound, userID)
	}

	// 3. 已是成员则拒绝重复添加
	var count int64
	s.Data.DB.Model(&model.UserTeam{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Count(&count)
	if count > 0 {
		return fmt.Errorf("%w: 用户已在团队中", ErrConflict)
	}

	// 4. 落库
	member := &model.UserTeam{
		TeamID:   teamID,
		UserID:   userID,
		Role:     role,
		JoinedAt: time.Now(),
	}
	return s.Data.DB.WithContext(ctx).Create(member).Error
}

// UpdateMemberRole 调整成员在团队内的角色
func (s *TeamService) UpdateMemberRole(ctx context.Context, teamID, userID uint, role string) error {
	if !model.IsValidTeamRole(role) {
		return fmt.Errorf("%w: 非法团队角色 %q", ErrInvalidInput, role)
	}

	result := s.Data.DB.WithContext(ctx).Model(&model.UserTeam{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: 成员关系不存在", ErrNotFound)
	}
	return nil
}

// RemoveMember 移出团队成员
func (s *TeamService) RemoveMember(ctx context.Context, teamID, userID uint) error {
	result := s.Data.DB.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Delete(&model.UserTeam{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: 成员关系不存在", ErrNotFound)
	}
	return nil
}

// ListTeams 团队列表 (预加载成员)
func (s *TeamService) ListTeams(ctx context.Context) ([]model.Team, error) {
	var teams []model.Team
	if err := s.Data.DB.WithContext(ctx).
		Preload("Members").
		Order("name asc").
		Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

// DeleteTeam 删除团队及其成员关系
func (s *TeamService) DeleteTeam(ctx context.Context, teamID uint) error {
	var team model.Team
	if err := s.Data.DB.First(&team, teamID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: 团队 %d", ErrNotFound, teamID)
		}
		return err
	}

	// 事务：先清成员关系，再删团队
	return s.Data.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", teamID).Delete(&model.UserTeam{}).Error; err != nil {
			return err
		}
		return tx.Delete(&team).Error
	})
}
