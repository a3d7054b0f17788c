package dto

type CreateTeamReq struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=255"`
}

type AddMemberReq struct {
	UserID uint   `json:"user_id" binding:"required"`
	Role   string `json:"role"` // leader / member，缺省 member
}

type UpdateMemberRoleReq struct {
	Role string `json:"role" binding:"required"`
}
