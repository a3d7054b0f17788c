package model

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog 审计日志，只追加不修改
// 写入失败只记日志，绝不影响主操作
type AuditLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	ActorID    uint   `gorm:"index" json:"actor_id"`
	ActorEmail string `gorm:"size:100" json:"actor_email"`

	Action       string `gorm:"size:50;index;not null" json:"action"`
	ResourceType string `gorm:"size:50;index" json:"resource_type"`
	ResourceID   string `gorm:"size:100;index" json:"resource_id"`

	Details datatypes.JSON `json:"details"`
	IP      string         `gorm:"size:50" json:"ip"`
}
