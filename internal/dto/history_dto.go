package dto

import "time"

// ChatHistoryItem 外部聊天机器人回传的单条记录
type ChatHistoryItem struct {
	UserID    uint      `json:"user_id"`
	SessionID string    `json:"session_id"`
	Question  string    `json:"question" binding:"required"`
	Answer    string    `json:"answer"`
	AskedAt   time.Time `json:"asked_at"`
}

// SearchHistoryItem 外部搜索入口回传的单条记录
type SearchHistoryItem struct {
	UserID     uint      `json:"user_id"`
	Query      string    `json:"query" binding:"required"`
	ResultNum  int       `json:"result_num"`
	SearchedAt time.Time `json:"searched_at"`
}

// IngestChatHistoryReq 对话历史采集请求
type IngestChatHistoryReq struct {
	SourceID uint              `json:"source_id" binding:"required"`
	Items    []ChatHistoryItem `json:"items" binding:"required"`
}

// IngestSearchHistoryReq 检索历史采集请求
type IngestSearchHistoryReq struct {
	SourceID uint                `json:"source_id" binding:"required"`
	Items    []SearchHistoryItem `json:"items" binding:"required"`
}
