package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"kb-portal/internal/data"
	"kb-portal/internal/dto"
	"kb-portal/internal/model"
	"kb-portal/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newWorkerData(t *testing.T) *data.Data {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, data.Migrate(db))

	return &data.Data{DB: db, HistoryQueue: "kb_history_tasks"}
}

func mustJSON(t *testing.T, v interface{}) string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return string(raw)
}

// chat 任务落库：payload 里的每条记录一行
func TestProcessTaskChat(t *testing.T) {
	d := newWorkerData(t)
	w := NewHistoryWorker(d)

	askedAt := time.Date(2026, 8, 15, 9, 30, 0, 0, time.UTC)
	payload := mustJSON(t, []dto.ChatHistoryItem{
		{UserID: 1, SessionID: "s1", Question: "q1", Answer: "a1", AskedAt: askedAt},
		{UserID: 2, SessionID: "s2", Question: "q2", Answer: "a2", AskedAt: askedAt},
	})
	raw := mustJSON(t, service.HistoryTask{
		TaskID:   "history_7_1",
		Type:     service.HistoryTaskChat,
		SourceID: 7,
		Payload:  json.RawMessage(payload),
	})

	require.NoError(t, w.ProcessTask(context.Background(), raw))

	var rows []model.ChatHistory
	require.NoError(t, d.DB.Order("session_id asc").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, uint(7), rows[0].SourceID)
	assert.Equal(t, "q1", rows[0].Question)
	assert.Equal(t, "a2", rows[1].Answer)
}

// search 任务落库
func TestProcessTaskSearch(t *testing.T) {
	d := newWorkerData(t)
	w := NewHistoryWorker(d)

	payload := mustJSON(t, []dto.SearchHistoryItem{
		{UserID: 3, Query: "产品手册", ResultNum: 5, SearchedAt: time.Now()},
	})
	raw := mustJSON(t, service.HistoryTask{
		TaskID:   "history_9_1",
		Type:     service.HistoryTaskSearch,
		SourceID: 9,
		Payload:  json.RawMessage(payload),
	})

	require.NoError(t, w.ProcessTask(context.Background(), raw))

	var rows []model.SearchHistory
	require.NoError(t, d.DB.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, uint(9), rows[0].SourceID)
	assert.Equal(t, "产品手册", rows[0].Query)
	assert.Equal(t, 5, rows[0].ResultNum)
}

// 未知任务类型：跳过不报错，也不落任何行
func TestProcessTaskUnknownType(t *testing.T) {
	d := newWorkerData(t)
	w := NewHistoryWorker(d)

	raw := mustJSON(t, service.HistoryTask{
		TaskID:  "history_x",
		Type:    "bogus",
		Payload: json.RawMessage("[]"),
	})

	require.NoError(t, w.ProcessTask(context.Background(), raw))

	var count int64
	d.DB.Model(&model.ChatHistory{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

// 坏消息直接报错，留给上层记日志
func TestProcessTaskMalformed(t *testing.T) {
	d := newWorkerData(t)
	w := NewHistoryWorker(d)

	assert.Error(t, w.ProcessTask(context.Background(), "not-json"))
}
