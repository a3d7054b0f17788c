package model

// 系统级角色
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	BaseModel
	Username     string `gorm:"uniqueIndex;size:50;not null" json:"username"`
	PasswordHash string `gorm:"not null" json:"-"`
	Email        string `gorm:"size:100" json:"email"`
	Avatar       string `gorm:"size:255" json:"avatar"`

	// 系统级角色 (admin, user) - admin 绕过所有 ACL 检查
	Role string `gorm:"size:20;default:'user'" json:"role"`

	// 🔥 我加入的团队 (通过中间表关联)
	Memberships []UserTeam `gorm:"foreignKey:UserID" json:"memberships"`
}

// IsAdmin 管理员判定，权限短路的唯一入口
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
