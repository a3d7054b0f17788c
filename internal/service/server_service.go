package service

import (
	"context"
	"fmt"

	"kb-portal/internal/data"
	"kb-portal/internal/dto"
	"kb-portal/internal/model"

	"gorm.io/gorm"
)

// ServerService RAGFlow 服务器记录管理
type ServerService struct {
	Data *data.Data
}

func NewServerService(data *data.Data) *ServerService {
	return &ServerService{Data: data}
}

func (s *ServerService) CreateServer(ctx context.Context, req dto.CreateServerReq) (*model.RagflowServer, error) {
	server := &model.RagflowServer{
		Name:    req.Name,
		BaseURL: req.BaseURL,
		APIKey:  req.APIKey,
		Active:  true,
	}
	if err := s.Data.DB.WithContext(ctx).Create(server).Error; err != nil {
		return nil, err
	}
	return server, nil
}

func (s *ServerService) ListServers(ctx context.Context) ([]model.RagflowServer, error) {
	var servers []model.RagflowServer
	if err := s.Data.DB.WithContext(ctx).Order("name asc").Find(&servers).Error; err != nil {
		return nil, err
	}
	return servers, nil
}

// SetActive 启用/停用服务器，停用后代理调用一律失败
func (s *ServerService) SetActive(ctx context.Context, id uint, active bool) error {
	result := s.Data.DB.WithContext(ctx).Model(&model.RagflowServer{}).
		Where("id = ?", id).
		Update("active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: 服务器 %d", ErrNotFound, id)
	}
	return nil
}

func (s *ServerService) DeleteServer(ctx context.Context, id uint) error {
	var server model.RagflowServer
	if err := s.Data.DB.First(&server, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: 服务器 %d", ErrNotFound, id)
		}
		return err
	}
	return s.Data.DB.WithContext(ctx).Delete(&server).Error
}
