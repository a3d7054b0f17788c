package service

import (
	"context"
	"encoding/json"

	"kb-portal/internal/data"
	"kb-portal/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// AuditService 审计日志，fire-and-forget
// 写入失败只打日志，绝不把错误抛给主操作
type AuditService struct {
	Data *data.Data
}

func NewAuditService(data *data.Data) *AuditService {
	return &AuditService{Data: data}
}

// Log 记录一条审计事件
func (s *AuditService) Log(ctx context.Context, actor Actor, action, resourceType, resourceID string, details map[string]interface{}) {
	var detailJSON datatypes.JSON
	if details != nil {
		if b, err := json.Marshal(details); err == nil {
			detailJSON = datatypes.JSON(b)
		}
	}

	entry := &model.AuditLog{
		ActorID:      actor.ID,
		ActorEmail:   actor.Email,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      detailJSON,
		IP:           actor.IP,
	}

	if err := s.Data.DB.WithContext(ctx).Create(entry).Error; err != nil {
		// 审计只是观测手段，失败不影响业务
		logrus.Warnf("⚠️ 审计日志写入失败 (action=%s): %v", action, err)
	}
}

// List 查询审计日志 (支持分页和筛选)
func (s *AuditService) List(ctx context.Context, action string, page, pageSize int) ([]model.AuditLog, int64, error) {
	var logs []model.AuditLog
	var total int64

	db := s.Data.DB.WithContext(ctx).Model(&model.AuditLog{})
	if action != "" {
		db = db.Where("action = ?", action)
	}

	db.Count(&total)

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	if err := db.Order("created_at desc").Limit(pageSize).Offset(offset).Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
