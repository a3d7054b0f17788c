package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"kb-portal/internal/data"
	"kb-portal/internal/dto"
	"kb-portal/internal/model"

	"github.com/sirupsen/logrus"
)

// 历史采集任务类型
const (
	HistoryTaskChat   = "chat"
	HistoryTaskSearch = "search"
)

// HistoryTask 队列消息格式 (生产者 -> worker)
type HistoryTask struct {
	TaskID    string          `json:"task_id"`
	Type      string          `json:"type"` // chat / search
	SourceID  uint            `json:"source_id"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

// HistoryService 外部聊天/搜索历史采集
// 接收端只校验和入队，落库由 worker 异步完成 (和 ETL 任务同一套路)
type HistoryService struct {
	Data *data.Data
}

func NewHistoryService(data *data.Data) *HistoryService {
	return &HistoryService{Data: data}
}

// IngestChatHistory 接收一批对话记录并入队
func (s *HistoryService) IngestChatHistory(ctx context.Context, sourceID uint, items []dto.ChatHistoryItem) (int, error) {
	if err := s.checkSource(sourceID, model.SourceTypeChat); err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, fmt.Errorf("%w: 空的历史批次", ErrInvalidInput)
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return 0, fmt.Errorf("%w: 历史记录序列化失败", ErrInvalidInput)
	}
	if err := s.enqueue(ctx, HistoryTaskChat, sourceID, payload); err != nil {
		return 0, err
	}
	return len(items), nil
}

// IngestSearchHistory 接收一批检索记录并入队
func (s *HistoryService) IngestSearchHistory(ctx context.Context, sourceID uint, items []dto.SearchHistoryItem) (int, error) {
	if err := s.checkSource(sourceID, model.SourceTypeSearch); err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, fmt.Errorf("%w: 空的历史批次", ErrInvalidInput)
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return 0, fmt.Errorf("%w: 历史记录序列化失败", ErrInvalidInput)
	}
	if err := s.enqueue(ctx, HistoryTaskSearch, sourceID, payload); err != nil {
		return 0, err
	}
	return len(items), nil
}

// checkSource 来源必须存在且类型匹配
func (s *HistoryService) checkSource(sourceID uint, wantType string) error {
	var src model.KnowledgeBaseSource
	if err := s.Data.DB.First(&src, sourceID).Error; err != nil {
		return fmt.Errorf("%w: 来源 %d", ErrNotFound, sourceID)
	}
	if src.Type != wantType {
		return fmt.Errorf("%w: 来源类型不匹配 (期望 %s，实际 %s)", ErrInvalidInput, wantType, src.Type)
	}
	return nil
}

// enqueue 构造任务消息并推入 Redis 列表 (生产者)
func (s *HistoryService) enqueue(ctx context.Context, taskType string, sourceID uint, payload json.RawMessage) error {
	task := HistoryTask{
		TaskID:    fmt.Sprintf("history_%d_%d", sourceID, time.Now().UnixNano()),
		Type:      taskType,
		SourceID:  sourceID,
		Payload:   payload,
		Timestamp: time.Now().Unix(),
	}
	raw, _ := json.Marshal(task)

	if err := s.Data.PushTask(ctx, s.Data.HistoryQueue, string(raw)); err != nil {
		return fmt.Errorf("任务入队失败: %v", err)
	}
	logrus.Infof("📦 [History] 任务已入队: %s (source=%d)", task.TaskID, sourceID)
	return nil
}

// ListChatHistory 查询已落库的对话记录
func (s *HistoryService) ListChatHistory(ctx context.Context, sourceID uint, page, pageSize int) ([]model.ChatHistory, int64, error) {
	var rows []model.ChatHistory
	var total int64

	db := s.Data.DB.WithContext(ctx).Model(&model.ChatHistory{})
	if sourceID > 0 {
		db = db.Where("source_id = ?", sourceID)
	}
	db.Count(&total)

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if err := db.Order("asked_at desc").Limit(pageSize).Offset((page - 1) * pageSize).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
