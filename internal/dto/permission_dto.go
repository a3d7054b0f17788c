package dto

// SetDocumentPermissionReq 设置文档桶授权
type SetDocumentPermissionReq struct {
	EntityType      string `json:"entity_type" binding:"required,oneof=user team"`
	EntityID        uint   `json:"entity_id" binding:"required"`
	BucketID        string `json:"bucket_id" binding:"required"`
	PermissionLevel int    `json:"permission_level" binding:"min=0,max=3"`
}

// SetPromptPermissionReq 设置提示词授权
type SetPromptPermissionReq struct {
	EntityType      string `json:"entity_type" binding:"required,oneof=user team"`
	EntityID        uint   `json:"entity_id" binding:"required"`
	PermissionLevel int    `json:"permission_level" binding:"min=0,max=3"`
}

// EffectivePermissionResp 有效级别查询结果
type EffectivePermissionResp struct {
	UserID          uint   `json:"user_id"`
	BucketID        string `json:"bucket_id,omitempty"`
	PermissionLevel int    `json:"permission_level"`
	LevelName       string `json:"level_name"`
}
