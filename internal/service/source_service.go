package service

import (
	"context"
	"fmt"

	"kb-portal/internal/data"
	"kb-portal/internal/dto"
	"kb-portal/internal/model"

	"gorm.io/gorm"
)

// SourceService 知识库来源管理 + Mode A 布尔 ACL 门控
type SourceService struct {
	Data *data.Data
	Team *TeamService
}

func NewSourceService(data *data.Data, team *TeamService) *SourceService {
	return &SourceService{Data: data, Team: team}
}

// IsAccessible 判断请求者能否访问某个来源
// 匿名请求只看 public；admin 短路放行；其余任一命中即可：
// public / 直接用户授权 / 任意团队成员身份 (注意：不要求 leader)
func (s *SourceService) IsAccessible(ctx context.Context, ac model.AccessControl, user *model.User) (bool, error) {
	// 1. 匿名：只有 public 来源可见，其余授权一律忽略
	if user == nil {
		return ac.Public, nil
	}

	// 2. admin 短路，跳过所有 ACL 检查
	if user.IsAdmin() {
		return true, nil
	}

	// 3. public 或直接用户授权
	if matchACLDirect(ac, user.ID) {
		return true, nil
	}

	// 4. 团队授权：任意成员身份都算 (与文档权限的 leader-only 规则不同，刻意保留)
	if len(ac.TeamIDs) == 0 {
		return false, nil
	}
	memberships, err := s.Team.GetUserTeams(ctx, user.ID)
	if err != nil {
		return false, err
	}
	teamSet := make(map[uint]bool, len(memberships))
	for _, m := range memberships {
		teamSet[m.TeamID] = true
	}
	return matchACLTeams(ac, teamSet), nil
}

// GetAvailableSources 列出请求者可见的来源，按 name 升序，保证列表稳定
func (s *SourceService) GetAvailableSources(ctx context.Context, user *model.User) ([]model.KnowledgeBaseSource, error) {
	var sources []model.KnowledgeBaseSource
	if err := s.Data.DB.WithContext(ctx).
		Order("name asc").
		Find(&sources).Error; err != nil {
		return nil, err
	}

	// admin 不过滤
	if user.IsAdmin() {
		return sources, nil
	}

	// 成员关系只查一次，逐条套用 ACL
	var teamSet map[uint]bool
	if user != nil {
		memberships, err := s.Team.GetUserTeams(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		teamSet = make(map[uint]bool, len(memberships))
		for _, m := range memberships {
			teamSet[m.TeamID] = true
		}
	}

	result := make([]model.KnowledgeBaseSource, 0, len(sources))
	for _, src := range sources {
		if user == nil {
			if src.AccessControl.Public {
				result = append(result, src)
			}
			continue
		}
		if matchACLDirect(src.AccessControl, user.ID) || matchACLTeams(src.AccessControl, teamSet) {
			result = append(result, src)
		}
	}
	return result, nil
}

// CreateSource 创建来源，(name, type) 必须唯一
func (s *SourceService) CreateSource(ctx context.Context, req dto.CreateSourceReq) (*model.KnowledgeBaseSource, error) {
	// 1. 类型校验
	if !model.IsValidSourceType(req.Type) {
		return nil, fmt.Errorf("%w: 非法来源类型 %q", ErrInvalidInput, req.Type)
	}

	// 2. 唯一性检查
	var count int64
	s.Data.DB.Model(&model.KnowledgeBaseSource{}).
		Where("name = ? AND type = ?", req.Name, req.Type).
		Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("%w: 来源 (%s, %s) 已存在", ErrConflict, req.Name, req.Type)
	}

	// 3. 落库
	src := &model.KnowledgeBaseSource{
		Type:          req.Type,
		Name:          req.Name,
		URL:           req.URL,
		AccessControl: req.AccessControl,
	}
	if err := s.Data.DB.WithContext(ctx).Create(src).Error; err != nil {
		return nil, err
	}
	return src, nil
}

// UpdateSource 更新来源，改名撞上 (name, type) 同样拒绝
func (s *SourceService) UpdateSource(ctx context.Context, id uint, req dto.UpdateSourceReq) (*model.KnowledgeBaseSource, error) {
	var src model.KnowledgeBaseSource
	if err := s.Data.DB.First(&src, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: 来源 %d", ErrNotFound, id)
		}
		return nil, err
	}

	if req.Name != "" && req.Name != src.Name {
		var count int64
		s.Data.DB.Model(&model.KnowledgeBaseSource{}).
			Where("name = ? AND type = ? AND id <> ?", req.Name, src.Type, src.ID).
			Count(&count)
		if count > 0 {
			return nil, fmt.Errorf("%w: 来源 (%s, %s) 已存在", ErrConflict, req.Name, src.Type)
		}
		src.Name = req.Name
	}
	if req.URL != "" {
		src.URL = req.URL
	}
	if req.AccessControl != nil {
		src.AccessControl = *req.AccessControl
	}

	if err := s.Data.DB.WithContext(ctx).Save(&src).Error; err != nil {
		return nil, err
	}
	return &src, nil
}

// DeleteSource 删除来源
func (s *SourceService) DeleteSource(ctx context.Context, id uint) error {
	result := s.Data.DB.WithContext(ctx).Delete(&model.KnowledgeBaseSource{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: 来源 %d", ErrNotFound, id)
	}
	return nil
}

// matchACLDirect public 或用户直接授权命中
func matchACLDirect(ac model.AccessControl, userID uint) bool {
	if ac.Public {
		return true
	}
	for _, id := range ac.UserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// matchACLTeams 团队授权与成员团队集合求交
func matchACLTeams(ac model.AccessControl, teamSet map[uint]bool) bool {
	for _, id := range ac.TeamIDs {
		if teamSet[id] {
			return true
		}
	}
	return false
}
