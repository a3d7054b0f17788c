package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kb-portal/internal/data"
	"kb-portal/internal/model"

	"gorm.io/gorm"
)

// PermissionService 文档桶 / 提示词的级别化权限 (Mode B)
// 与来源 ACL 不同：有 NONE < VIEW < UPLOAD < FULL 四级，
// 且团队授权只对 leader 生效 (普通 member 不继承，刻意的不对称)
type PermissionService struct {
	Data  *data.Data
	Team  *TeamService
	Audit *AuditService
}

func NewPermissionService(data *data.Data, team *TeamService, audit *AuditService) *PermissionService {
	return &PermissionService{Data: data, Team: team, Audit: audit}
}

// GetDocumentPermission 点查某主体在某桶上的授权级别
// 无授权记录不是错误，返回 NONE
func (s *PermissionService) GetDocumentPermission(ctx context.Context, entityType string, entityID uint, bucket string) (model.PermissionLevel, error) {
	var row model.DocumentPermission
	err := s.Data.DB.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ? AND bucket_id = ?", entityType, entityID, bucket).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.PermissionNone, nil
		}
		return model.PermissionNone, err
	}
	return row.PermissionLevel, nil
}

// GetPromptPermission 点查提示词授权级别
func (s *PermissionService) GetPromptPermission(ctx context.Context, entityType string, entityID uint) (model.PermissionLevel, error) {
	var row model.PromptPermission
	err := s.Data.DB.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.PermissionNone, nil
		}
		return model.PermissionNone, err
	}
	return row.PermissionLevel, nil
}

// ResolveDocumentPermission 计算用户在某桶上的有效级别
// admin 直接 FULL (短路，不再查库)；
// 否则 max(用户直接授权, 所有 leader 团队授权的最大值)
func (s *PermissionService) ResolveDocumentPermission(ctx context.Context, userID uint, bucket string) (model.PermissionLevel, error) {
	return s.resolveEffective(ctx, userID, func(entityType string, entityID uint) (model.PermissionLevel, error) {
		return s.GetDocumentPermission(ctx, entityType, entityID, bucket)
	})
}

// ResolvePromptPermission 计算用户对提示词的有效级别，规则同上
func (s *PermissionService) ResolvePromptPermission(ctx context.Context, userID uint) (model.PermissionLevel, error) {
	return s.resolveEffective(ctx, userID, func(entityType string, entityID uint) (model.PermissionLevel, error) {
		return s.GetPromptPermission(ctx, entityType, entityID)
	})
}

// resolveEffective 通用的有效级别计算
func (s *PermissionService) resolveEffective(ctx context.Context, userID uint, getLevel func(entityType string, entityID uint) (model.PermissionLevel, error)) (model.PermissionLevel, error) {
	// 1. admin 短路
	var user model.User
	err := s.Data.DB.WithContext(ctx).First(&user, userID).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return model.PermissionNone, err
	}
	if err == nil && user.IsAdmin() {
		return model.PermissionFull, nil
	}

	// 2. 用户直接授权
	effective, err := getLevel(model.EntityTypeUser, userID)
	if err != nil {
		return model.PermissionNone, err
	}

	// 3. 只取 leader 身份的团队 (member 不继承文档/提示词权限)
	// 成员关系实时查询，团队变更立刻生效
	memberships, err := s.Team.GetUserTeams(ctx, userID)
	if err != nil {
		return model.PermissionNone, err
	}
	for _, m := range memberships {
		if m.Role != model.TeamRoleLeader {
			continue
		}
		teamLevel, err := getLevel(model.EntityTypeTeam, m.TeamID)
		if err != nil {
			return model.PermissionNone, err
		}
		effective = model.MaxLevel(effective, teamLevel)
	}

	return effective, nil
}

// SetDocumentPermission 写入文档桶授权，upsert 语义
// 同一 (entity_type, entity_id, bucket) 至多一条记录
func (s *PermissionService) SetDocumentPermission(ctx context.Context, entityType string, entityID uint, bucket string, level model.PermissionLevel, actor Actor) (*model.DocumentPermission, error) {
	// 1. 级别校验，落库前拒绝
	if !level.Valid() {
		return nil, fmt.Errorf("%w: 非法权限级别 %d", ErrInvalidInput, level)
	}

	// 2. 先查后写 (upsert)
	var row model.DocumentPermission
	err := s.Data.DB.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ? AND bucket_id = ?", entityType, entityID, bucket).
		First(&row).Error
	switch {
	case err == nil:
		row.PermissionLevel = level
		row.UpdatedBy = actor.ID
		if err := s.Data.DB.WithContext(ctx).Save(&row).Error; err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = model.DocumentPermission{
			EntityType:      entityType,
			EntityID:        entityID,
			BucketID:        bucket,
			PermissionLevel: level,
			CreatedBy:       actor.ID,
			UpdatedBy:       actor.ID,
		}
		if err := s.Data.DB.WithContext(ctx).Create(&row).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	// 3. 审计 (失败不回滚写入)
	s.Audit.Log(ctx, actor, "permission.document.set", "document_bucket",
		fmt.Sprintf("%s:%d:%s", entityType, entityID, bucket),
		map[string]interface{}{
			"permission_level": int(level),
			"set_at":           time.Now().Format(time.RFC3339),
		})

	return &row, nil
}

// SetPromptPermission 写入提示词授权，upsert 语义
func (s *PermissionService) SetPromptPermission(ctx context.Context, entityType string, entityID uint, level model.PermissionLevel, actor Actor) (*model.PromptPermission, error) {
	if !level.Valid() {
		return nil, fmt.Errorf("%w: 非法权限级别 %d", ErrInvalidInput, level)
	}

	var row model.PromptPermission
	err := s.Data.DB.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		First(&row).Error
	switch {
	case err == nil:
		row.PermissionLevel = level
		row.UpdatedBy = actor.ID
		if err := s.Data.DB.WithContext(ctx).Save(&row).Error; err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = model.PromptPermission{
			EntityType:      entityType,
			EntityID:        entityID,
			PermissionLevel: level,
			CreatedBy:       actor.ID,
			UpdatedBy:       actor.ID,
		}
		if err := s.Data.DB.WithContext(ctx).Create(&row).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	s.Audit.Log(ctx, actor, "permission.prompt.set", "prompt",
		fmt.Sprintf("%s:%d", entityType, entityID),
		map[string]interface{}{
			"permission_level": int(level),
			"set_at":           time.Now().Format(time.RFC3339),
		})

	return &row, nil
}
