package worker

import (
	"context"
	"encoding/json"
	"time"

	"kb-portal/internal/data"
	"kb-portal/internal/dto"
	"kb-portal/internal/model"
	"kb-portal/internal/service"

	"github.com/sirupsen/logrus"
)

// HistoryWorker 负责从 Redis 拿历史采集任务并落库
type HistoryWorker struct {
	data *data.Data
}

func NewHistoryWorker(data *data.Data) *HistoryWorker {
	return &HistoryWorker{data: data}
}

// Start 启动 Worker (非阻塞)
func (w *HistoryWorker) Start(ctx context.Context, numWorkers int) {
	logrus.Infof("🚀 启动 %d 个 History Worker，开始监听队列 %s...", numWorkers, w.data.HistoryQueue)

	for i := 0; i < numWorkers; i++ {
		go w.processLoop(ctx, i)
	}
}

func (w *HistoryWorker) processLoop(ctx context.Context, workerID int) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			// 1. 阻塞式获取任务 (BLPOP)
			result, err := w.data.Redis.BLPop(ctx, 0*time.Second, w.data.HistoryQueue).Result()
			if err != nil {
				// Redis 偶尔连接超时是正常的，不要 panic
				logrus.Debugf("[Worker-%d] 等待任务中... (%v)", workerID, err)
				time.Sleep(3 * time.Second)
				continue
			}

			raw := result[1]

			// 2. 执行具体处理逻辑
			if err := w.ProcessTask(ctx, raw); err != nil {
				logrus.Warnf("[Worker-%d] ❌ 处理失败: %v", workerID, err)
			} else {
				logrus.Infof("[Worker-%d] ✅ 处理完成", workerID)
			}
		}
	}
}

// ProcessTask 单条任务的落库流程
func (w *HistoryWorker) ProcessTask(ctx context.Context, raw string) error {
	var task service.HistoryTask
	if err := json.Unmarshal([]byte(raw), &task); err != nil {
		return err
	}

	switch task.Type {
	case service.HistoryTaskChat:
		var items []dto.ChatHistoryItem
		if err := json.Unmarshal(task.Payload, &items); err != nil {
			return err
		}
		rows := make([]model.ChatHistory, 0, len(items))
		for _, item := range items {
			rows = append(rows, model.ChatHistory{
				SourceID:  task.SourceID,
				UserID:    item.UserID,
				SessionID: item.SessionID,
				Question:  item.Question,
				Answer:    item.Answer,
				AskedAt:   item.AskedAt,
			})
		}
		return w.data.DB.WithContext(ctx).Create(&rows).Error

	case service.HistoryTaskSearch:
		var items []dto.SearchHistoryItem
		if err := json.Unmarshal(task.Payload, &items); err != nil {
			return err
		}
		rows := make([]model.SearchHistory, 0, len(items))
		for _, item := range items {
			rows = append(rows, model.SearchHistory{
				SourceID:   task.SourceID,
				UserID:     item.UserID,
				Query:      item.Query,
				ResultNum:  item.ResultNum,
				SearchedAt: item.SearchedAt,
			})
		}
		return w.data.DB.WithContext(ctx).Create(&rows).Error
	}

	logrus.Warnf("未知任务类型: %s (task_id=%s)", task.Type, task.TaskID)
	return nil
}
