package data

import (
	"context"
	"fmt"
	"io"

	"kb-portal/internal/conf"
	"kb-portal/internal/model"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Data 结构体持有所有数据库句柄
type Data struct {
	DB    *gorm.DB
	Redis *redis.Client
	Minio *minio.Client

	// 默认文档桶 (从配置读取)
	Bucket string
	// 历史采集任务队列名
	HistoryQueue string
}

func NewData(cfg *conf.Config) (*Data, func(), error) {
	// 1. 连接 Postgres
	dsn := cfg.Data.DatabaseSource
	pgDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %v", err)
	}

	// 自动迁移，所有模型都放进来
	if err := Migrate(pgDB); err != nil {
		return nil, nil, fmt.Errorf("schema migration failed: %v", err)
	}
	logrus.Info("✅ 数据库表结构迁移完成")

	// -------------------------------------------------------
	// 2. 初始化 Redis
	// -------------------------------------------------------
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Data.RedisAddr,
		Password: cfg.Data.RedisPassword,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return nil, nil, fmt.Errorf("redis 连接失败: %v", err)
	}
	logrus.Info("✅ Redis 连接成功")

	// -------------------------------------------------------
	// 3. 初始化 MinIO
	// -------------------------------------------------------
	minioClient, err := minio.New(cfg.Data.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Data.MinioAccessKey, cfg.Data.MinioSecretKey, ""),
		Secure: false,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("minio 初始化失败: %v", err)
	}

	// 自动创建默认 Bucket
	bucketName := cfg.Data.MinioBucket
	if bucketName == "" {
		bucketName = "kb-docs" // 兜底
	}

	exists, err := minioClient.BucketExists(context.Background(), bucketName)
	if err != nil {
		return nil, nil, fmt.Errorf("检查 MinIO Bucket 失败: %v", err)
	}
	if !exists {
		if err := minioClient.MakeBucket(context.Background(), bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, nil, fmt.Errorf("创建 MinIO Bucket 失败: %v", err)
		}
		logrus.Infof("🎉 MinIO Bucket '%s' 创建成功", bucketName)
	} else {
		logrus.Infof("✅ MinIO 连接成功 (Bucket '%s' 已存在)", bucketName)
	}

	d := &Data{
		DB:           pgDB,
		Redis:        rdb,
		Minio:        minioClient,
		Bucket:       bucketName,
		HistoryQueue: cfg.Data.HistoryQueue,
	}

	// 构造清理函数
	cleanup := func() {
		logrus.Info("正在关闭数据层资源...")
		if sqlDB, err := d.DB.DB(); err == nil {
			sqlDB.Close()
		}
		d.Redis.Close()
	}

	return d, cleanup, nil
}

// Migrate 建表/改表，测试用的内存库也走这里
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Team{},
		&model.UserTeam{}, // 成员关系表 (含团队内角色)
		&model.KnowledgeBaseSource{},
		&model.DocumentPermission{},
		&model.PromptPermission{},
		&model.Project{},
		&model.DocumentCategory{},
		&model.DocumentCategoryVersion{},
		&model.RagflowServer{},
		&model.AuditLog{},
		&model.ChatHistory{},
		&model.SearchHistory{},
	)
}

// PushTask 将任务推入 Redis 列表 (生产者)
func (d *Data) PushTask(ctx context.Context, queue string, payload string) error {
	return d.Redis.LPush(ctx, queue, payload).Err()
}

// UploadObject 流式上传到 MinIO
func (d *Data) UploadObject(ctx context.Context, bucket, objectName string, reader io.Reader, size int64, contentType string) error {
	_, err := d.Minio.PutObject(ctx, bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

// GetObjectStream 获取文件流 (用于预览/下载)
func (d *Data) GetObjectStream(ctx context.Context, bucket, objectName string) (*minio.Object, int64, error) {
	obj, err := d.Minio.GetObject(ctx, bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, err
	}
	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, 0, err
	}
	return obj, stat.Size, nil
}

// RemoveObject 删除对象
func (d *Data) RemoveObject(ctx context.Context, bucket, objectName string) error {
	return d.Minio.RemoveObject(ctx, bucket, objectName, minio.RemoveObjectOptions{})
}
