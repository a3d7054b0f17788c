package dto

import "kb-portal/internal/model"

type CreateSourceReq struct {
	Type          string              `json:"type" binding:"required"`
	Name          string              `json:"name" binding:"required,max=100"`
	URL           string              `json:"url" binding:"omitempty,url"`
	AccessControl model.AccessControl `json:"access_control"`
}

type UpdateSourceReq struct {
	Name          string               `json:"name" binding:"omitempty,max=100"`
	URL           string               `json:"url" binding:"omitempty,url"`
	AccessControl *model.AccessControl `json:"access_control"`
}
