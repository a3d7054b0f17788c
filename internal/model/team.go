package model

import "time"

// 团队内角色: 每条 membership 独立一个角色，不是用户全局属性
const (
	TeamRoleLeader = "leader"
	TeamRoleMember = "member"
)

type Team struct {
	BaseModel
	Name        string `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`

	// 关联
	Members []UserTeam `gorm:"foreignKey:TeamID" json:"members"`
}

// UserTeam 中间表：记录用户在团队里的角色
type UserTeam struct {
	UserID uint `gorm:"primaryKey" json:"user_id"`
	TeamID uint `gorm:"primaryKey" json:"team_id"`

	// 角色: leader, member
	Role     string    `gorm:"size:20;default:'member'" json:"role"`
	JoinedAt time.Time `json:"joined_at"`

	// 预加载关联
	User User `json:"user"`
	Team Team `json:"team"`
}

// IsValidTeamRole 校验团队角色取值
func IsValidTeamRole(role string) bool {
	return role == TeamRoleLeader || role == TeamRoleMember
}
