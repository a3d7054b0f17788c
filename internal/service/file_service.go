package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"

	"kb-portal/internal/data"
	"kb-portal/internal/dto"
	"kb-portal/internal/model"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/sirupsen/logrus"
)

// FileService 文档桶读写，全部经过 Mode B 权限门控
// VIEW 可下载，UPLOAD 可上传，FULL 可删除
type FileService struct {
	Data       *data.Data
	Permission *PermissionService
}

func NewFileService(data *data.Data, permission *PermissionService) *FileService {
	return &FileService{Data: data, Permission: permission}
}

// UploadFile 上传文件到指定桶
func (s *FileService) UploadFile(ctx context.Context, userID uint, bucket string, fileHeader *multipart.FileHeader) (*dto.FileResp, error) {
	if bucket == "" {
		bucket = s.Data.Bucket
	}

	// 1. 鉴权：UPLOAD 及以上
	level, err := s.Permission.ResolveDocumentPermission(ctx, userID, bucket)
	if err != nil {
		return nil, err
	}
	if level < model.PermissionUpload {
		return nil, fmt.Errorf("%w: 没有该桶的上传权限", ErrForbidden)
	}

	// 2. 打开文件流
	src, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	// 3. 生成对象名 (uuid 防重名)，按桶归档
	ext := filepath.Ext(fileHeader.Filename)
	objectName := fmt.Sprintf("%s/%s%s", bucket, uuid.New().String(), ext)

	// 4. 流式上传到 MinIO
	if err := s.Data.UploadObject(ctx, s.Data.Bucket, objectName, src, fileHeader.Size, fileHeader.Header.Get("Content-Type")); err != nil {
		return nil, fmt.Errorf("MinIO 上传失败: %v", err)
	}
	logrus.Infof("文件已存入 MinIO: %s (Size: %d)", objectName, fileHeader.Size)

	return &dto.FileResp{
		Bucket:   bucket,
		Object:   objectName,
		FileName: fileHeader.Filename,
		Size:     fileHeader.Size,
	}, nil
}

// GetFile 获取文件流 (用于预览/下载)，VIEW 及以上
func (s *FileService) GetFile(ctx context.Context, userID uint, bucket, objectName string) (*minio.Object, int64, error) {
	if bucket == "" {
		bucket = s.Data.Bucket
	}

	level, err := s.Permission.ResolveDocumentPermission(ctx, userID, bucket)
	if err != nil {
		return nil, 0, err
	}
	if level < model.PermissionView {
		return nil, 0, fmt.Errorf("%w: 没有该桶的查看权限", ErrForbidden)
	}

	return s.Data.GetObjectStream(ctx, s.Data.Bucket, objectName)
}

// DeleteFile 删除对象，FULL 才允许
func (s *FileService) DeleteFile(ctx context.Context, userID uint, bucket, objectName string) error {
	if bucket == "" {
		bucket = s.Data.Bucket
	}

	level, err := s.Permission.ResolveDocumentPermission(ctx, userID, bucket)
	if err != nil {
		return err
	}
	if level < model.PermissionFull {
		return fmt.Errorf("%w: 没有该桶的删除权限", ErrForbidden)
	}

	return s.Data.RemoveObject(ctx, s.Data.Bucket, objectName)
}
