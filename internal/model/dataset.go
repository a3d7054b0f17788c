package model

import (
	"time"

	"gorm.io/datatypes"
)

// Project 项目，分类的归属，提供数据集命名前缀与默认解析配置
type Project struct {
	BaseModel
	Name        string `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`

	// 数据集默认配置 (创建 RAGFlow 数据集时使用)
	EmbeddingModel string         `gorm:"size:100" json:"embedding_model"` // 默认 bge-m3
	ChunkMethod    string         `gorm:"size:50" json:"chunk_method"`     // 默认 naive
	ParserConfig   datatypes.JSON `json:"parser_config"`                   // 默认 {}

	Categories []DocumentCategory `gorm:"foreignKey:ProjectID" json:"categories"`
}

// DocumentCategory 文档分类，版本的容器
type DocumentCategory struct {
	BaseModel
	ProjectID uint   `gorm:"index;not null" json:"project_id"`
	Name      string `gorm:"size:100;not null" json:"name"`

	Versions []DocumentCategoryVersion `gorm:"foreignKey:CategoryID" json:"versions"`
}

// 版本状态机: active -> archived；删除即移除本地行 (终态)
const (
	VersionStatusActive   = "active"
	VersionStatusArchived = "archived"
)

// DocumentCategoryVersion 分类版本，与远端 RAGFlow 数据集一一对应
// RagflowDatasetID 为 nil 表示无远端挂载 (创建路径上不允许出现这种行)
type DocumentCategoryVersion struct {
	BaseModel
	CategoryID uint   `gorm:"index;not null" json:"category_id"`
	Version    string `gorm:"size:50;not null" json:"version"`

	// 远端挂载信息
	ServerID         uint    `gorm:"index" json:"server_id"`
	RagflowDatasetID *string `gorm:"size:64;index" json:"ragflow_dataset_id"`
	DatasetName      string  `gorm:"size:255" json:"dataset_name"`

	Status       string         `gorm:"size:20;default:'active';index" json:"status"`
	LastSyncedAt time.Time      `json:"last_synced_at"`
	Metadata     datatypes.JSON `json:"metadata"` // 远端数据集最近一次已知状态
}
