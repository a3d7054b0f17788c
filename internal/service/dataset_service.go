package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"kb-portal/internal/data"
	"kb-portal/internal/model"
	"kb-portal/internal/ragflow"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RagflowClient 远端数据集操作接口，测试时可注入假实现
type RagflowClient interface {
	CreateDataset(ctx context.Context, serverID uint, req ragflow.CreateDatasetReq) (*ragflow.Dataset, error)
	ListDatasets(ctx context.Context, serverID uint, query map[string]string) ([]ragflow.Dataset, error)
	DeleteDatasets(ctx context.Context, serverID uint, ids []string) error
}

// RemoteCleanup 删除操作的远端清理结果
// 本地结果与远端结果分开表达，调用方/测试可以分别断言
type RemoteCleanup string

const (
	CleanupSkipped RemoteCleanup = "skipped" // 无远端挂载，无需清理
	CleanupDone    RemoteCleanup = "done"
	CleanupFailed  RemoteCleanup = "failed" // 已记日志，本地删除照常进行
)

// 数据集默认参数 (项目未配置时使用)
const (
	defaultEmbeddingModel = "bge-m3"
	defaultChunkMethod    = "naive"
)

// DatasetService 分类版本与远端 RAGFlow 数据集的生命周期同步
// 创建方向：远端失败则整体失败 (不留本地孤儿行)
// 删除方向：远端失败吞掉只记日志 (本地不能被远端卡死)
type DatasetService struct {
	Data  *data.Data
	Rag   RagflowClient
	Audit *AuditService
}

func NewDatasetService(data *data.Data, rag RagflowClient, audit *AuditService) *DatasetService {
	return &DatasetService{Data: data, Rag: rag, Audit: audit}
}

// CreateVersion 创建分类版本并在远端建立数据集
// 远端创建失败时直接返回错误，不落任何本地行：
// 没有后端数据集的版本看起来能用实际不能用，比报错更糟
func (s *DatasetService) CreateVersion(ctx context.Context, categoryID uint, versionLabel string, serverID uint, actor Actor) (*model.DocumentCategoryVersion, error) {
	// 1. 解析分类与所属项目 (命名需要)
	var category model.DocumentCategory
	if err := s.Data.DB.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: 分类 %d", ErrNotFound, categoryID)
		}
		return nil, err
	}
	var project model.Project
	if err := s.Data.DB.First(&project, category.ProjectID).Error; err != nil {
		return nil, fmt.Errorf("%w: 项目 %d", ErrNotFound, category.ProjectID)
	}

	// 2. 同一分类下版本号不允许重复
	var count int64
	s.Data.DB.Model(&model.DocumentCategoryVersion{}).
		Where("category_id = ? AND version = ?", categoryID, versionLabel).
		Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("%w: 版本 %q 已存在", ErrConflict, versionLabel)
	}

	// 3. 确定性数据集命名 + 项目默认配置
	datasetName := fmt.Sprintf("%s_%s_%s", project.Name, category.Name, versionLabel)

	embeddingModel := project.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = defaultEmbeddingModel
	}
	chunkMethod := project.ChunkMethod
	if chunkMethod == "" {
		chunkMethod = defaultChunkMethod
	}
	parserConfig := json.RawMessage(project.ParserConfig)
	if len(parserConfig) == 0 {
		parserConfig = json.RawMessage("{}")
	}

	// 4. 远端创建，失败即中止 (给上层一个可区分的错误，UI 提示检查服务器连接)
	remote, err := s.Rag.CreateDataset(ctx, serverID, ragflow.CreateDatasetReq{
		Name:           datasetName,
		EmbeddingModel: embeddingModel,
		ChunkMethod:    chunkMethod,
		ParserConfig:   parserConfig,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemote, err)
	}

	// 5. 远端成功后落库
	metadata, _ := json.Marshal(remote)
	version := &model.DocumentCategoryVersion{
		CategoryID:       categoryID,
		Version:          versionLabel,
		ServerID:         serverID,
		RagflowDatasetID: &remote.ID,
		DatasetName:      remote.Name,
		Status:           model.VersionStatusActive,
		LastSyncedAt:     time.Now(),
		Metadata:         datatypes.JSON(metadata),
	}
	if err := s.Data.DB.WithContext(ctx).Create(version).Error; err != nil {
		return nil, err
	}

	s.Audit.Log(ctx, actor, "dataset.version.create", "category_version",
		fmt.Sprintf("%d:%s", categoryID, versionLabel),
		map[string]interface{}{
			"dataset_name":       datasetName,
			"ragflow_dataset_id": remote.ID,
			"server_id":          serverID,
		})
	return version, nil
}

// SyncVersion 拉取远端数据集状态回填本地
// 前置条件：版本必须已挂载远端数据集；
// 远端查不到时本地 name/metadata 保持原样 (宁可陈旧也不因一次空响应清掉本地状态)
func (s *DatasetService) SyncVersion(ctx context.Context, versionID uint) (*model.DocumentCategoryVersion, error) {
	var version model.DocumentCategoryVersion
	if err := s.Data.DB.First(&version, versionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: 版本 %d", ErrNotFound, versionID)
		}
		return nil, err
	}
	if version.RagflowDatasetID == nil {
		return nil, fmt.Errorf("%w: 版本未挂载远端数据集，无法同步", ErrInvalidInput)
	}

	list, err := s.Rag.ListDatasets(ctx, version.ServerID, map[string]string{"id": *version.RagflowDatasetID})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemote, err)
	}

	if len(list) == 0 {
		// 远端消失：只更新同步时间，不动 name/metadata，也不自动归档
		version.LastSyncedAt = time.Now()
		if err := s.Data.DB.WithContext(ctx).Save(&version).Error; err != nil {
			return nil, err
		}
		logrus.Warnf("⚠️ 同步版本 %d：远端数据集 %s 不存在，本地状态保持不变", versionID, *version.RagflowDatasetID)
		return &version, nil
	}

	remote := list[0]
	metadata, _ := json.Marshal(remote)
	version.DatasetName = remote.Name
	version.Metadata = datatypes.JSON(metadata)
	version.LastSyncedAt = time.Now()
	if err := s.Data.DB.WithContext(ctx).Save(&version).Error; err != nil {
		return nil, err
	}
	return &version, nil
}

// ArchiveVersion 归档是纯本地的可见性状态，不碰远端数据集
// 远端保留，后续可以通过 sync 重新拉起
func (s *DatasetService) ArchiveVersion(ctx context.Context, versionID uint) error {
	result := s.Data.DB.WithContext(ctx).Model(&model.DocumentCategoryVersion{}).
		Where("id = ?", versionID).
		Update("status", model.VersionStatusArchived)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: 版本 %d", ErrNotFound, versionID)
	}
	return nil
}

// DeleteVersion 删除本地版本行，远端删除尽力而为
// 远端失败只记日志并通过返回值反映，绝不阻止本地删除：
// 孤儿数据集可以之后在服务器侧清理，卡死的本地行用户毫无办法
func (s *DatasetService) DeleteVersion(ctx context.Context, versionID uint, actor Actor) (RemoteCleanup, error) {
	var version model.DocumentCategoryVersion
	if err := s.Data.DB.First(&version, versionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CleanupSkipped, fmt.Errorf("%w: 版本 %d", ErrNotFound, versionID)
		}
		return CleanupSkipped, err
	}

	cleanup := CleanupSkipped
	if version.RagflowDatasetID != nil && version.ServerID != 0 {
		if err := s.Rag.DeleteDatasets(ctx, version.ServerID, []string{*version.RagflowDatasetID}); err != nil {
			logrus.Warnf("⚠️ 远端数据集 %s 删除失败 (版本 %d)，本地删除继续: %v", *version.RagflowDatasetID, versionID, err)
			cleanup = CleanupFailed
		} else {
			cleanup = CleanupDone
		}
	}

	if err := s.Data.DB.WithContext(ctx).Delete(&version).Error; err != nil {
		return cleanup, err
	}

	s.Audit.Log(ctx, actor, "dataset.version.delete", "category_version",
		fmt.Sprintf("%d:%s", version.CategoryID, version.Version),
		map[string]interface{}{"remote_cleanup": string(cleanup)})
	return cleanup, nil
}

// CreateCategory 创建文档分类
func (s *DatasetService) CreateCategory(ctx context.Context, projectID uint, name string) (*model.DocumentCategory, error) {
	var project model.Project
	if err := s.Data.DB.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: 项目 %d", ErrNotFound, projectID)
		}
		return nil, err
	}

	category := &model.DocumentCategory{ProjectID: projectID, Name: name}
	if err := s.Data.DB.WithContext(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory 删除分类：先批量尽力清理远端数据集，再事务内级联删本地行
func (s *DatasetService) DeleteCategory(ctx context.Context, categoryID uint, actor Actor) (RemoteCleanup, error) {
	var category model.DocumentCategory
	if err := s.Data.DB.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CleanupSkipped, fmt.Errorf("%w: 分类 %d", ErrNotFound, categoryID)
		}
		return CleanupSkipped, err
	}

	// 1. 收集所有版本的远端数据集 ID (按服务器分组)
	var versions []model.DocumentCategoryVersion
	if err := s.Data.DB.Where("category_id = ?", categoryID).Find(&versions).Error; err != nil {
		return CleanupSkipped, err
	}
	idsByServer := make(map[uint][]string)
	for _, v := range versions {
		if v.RagflowDatasetID != nil && v.ServerID != 0 {
			idsByServer[v.ServerID] = append(idsByServer[v.ServerID], *v.RagflowDatasetID)
		}
	}

	// 2. 一次性批量远端删除，失败吞掉
	cleanup := CleanupSkipped
	if len(idsByServer) > 0 {
		cleanup = CleanupDone
		for serverID, ids := range idsByServer {
			if err := s.Rag.DeleteDatasets(ctx, serverID, ids); err != nil {
				logrus.Warnf("⚠️ 分类 %d 级联清理远端数据集失败 (server=%d): %v", categoryID, serverID, err)
				cleanup = CleanupFailed
			}
		}
	}

	// 3. 本地级联删除
	err := s.Data.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", categoryID).Delete(&model.DocumentCategoryVersion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&category).Error
	})
	if err != nil {
		return cleanup, err
	}

	s.Audit.Log(ctx, actor, "dataset.category.delete", "category",
		fmt.Sprintf("%d", categoryID),
		map[string]interface{}{
			"versions":       len(versions),
			"remote_cleanup": string(cleanup),
		})
	return cleanup, nil
}

// ListVersions 分类下的版本列表
func (s *DatasetService) ListVersions(ctx context.Context, categoryID uint) ([]model.DocumentCategoryVersion, error) {
	var versions []model.DocumentCategoryVersion
	if err := s.Data.DB.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("created_at desc").
		Find(&versions).Error; err != nil {
		return nil, err
	}
	return versions, nil
}
