package model

// PermissionLevel 权限级别，全序，整数比较
// NONE < VIEW < UPLOAD < FULL
type PermissionLevel int

const (
	PermissionNone   PermissionLevel = 0
	PermissionView   PermissionLevel = 1
	PermissionUpload PermissionLevel = 2
	PermissionFull   PermissionLevel = 3
)

// Valid 校验取值范围，落库前调用
func (l PermissionLevel) Valid() bool {
	return l >= PermissionNone && l <= PermissionFull
}

func (l PermissionLevel) String() string {
	switch l {
	case PermissionNone:
		return "none"
	case PermissionView:
		return "view"
	case PermissionUpload:
		return "upload"
	case PermissionFull:
		return "full"
	}
	return "unknown"
}

// MaxLevel 取两个级别的较大者
func MaxLevel(a, b PermissionLevel) PermissionLevel {
	if a > b {
		return a
	}
	return b
}

// 授权主体类型
const (
	EntityTypeUser = "user"
	EntityTypeTeam = "team"
)

// DocumentPermission 文档桶权限授予
// 约束: (entity_type, entity_id, bucket_id) 至多一条有效记录，写入走 upsert
type DocumentPermission struct {
	BaseModel
	EntityType string `gorm:"size:20;not null;index:idx_doc_perm_key" json:"entity_type"`
	EntityID   uint   `gorm:"not null;index:idx_doc_perm_key" json:"entity_id"`
	BucketID   string `gorm:"size:100;not null;index:idx_doc_perm_key" json:"bucket_id"`

	PermissionLevel PermissionLevel `gorm:"not null;default:0" json:"permission_level"`

	CreatedBy uint `json:"created_by"`
	UpdatedBy uint `json:"updated_by"`
}

// PromptPermission 提示词权限授予
// 约束: (entity_type, entity_id) 至多一条有效记录
type PromptPermission struct {
	BaseModel
	EntityType string `gorm:"size:20;not null;index:idx_prompt_perm_key" json:"entity_type"`
	EntityID   uint   `gorm:"not null;index:idx_prompt_perm_key" json:"entity_id"`

	PermissionLevel PermissionLevel `gorm:"not null;default:0" json:"permission_level"`

	CreatedBy uint `json:"created_by"`
	UpdatedBy uint `json:"updated_by"`
}
