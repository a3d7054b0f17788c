package service

import (
	"context"
	"fmt"

	"kb-portal/internal/data"
	"kb-portal/internal/dto"
	"kb-portal/internal/model"

	"gorm.io/datatypes"
)

// ProjectService 项目管理 (数据集命名前缀与默认解析配置的来源)
type ProjectService struct {
	Data *data.Data
}

func NewProjectService(data *data.Data) *ProjectService {
	return &ProjectService{Data: data}
}

func (s *ProjectService) CreateProject(ctx context.Context, req dto.CreateProjectReq) (*model.Project, error) {
	// 名称唯一
	var count int64
	s.Data.DB.Model(&model.Project{}).Where("name = ?", req.Name).Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("%w: 项目 %q 已存在", ErrConflict, req.Name)
	}

	project := &model.Project{
		Name:           req.Name,
		Description:    req.Description,
		EmbeddingModel: req.EmbeddingModel,
		ChunkMethod:    req.ChunkMethod,
	}
	if req.ParserConfig != nil {
		project.ParserConfig = datatypes.JSON(req.ParserConfig)
	}
	if err := s.Data.DB.WithContext(ctx).Create(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) ListProjects(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	if err := s.Data.DB.WithContext(ctx).
		Preload("Categories").
		Order("name asc").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}
