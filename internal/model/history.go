package model

import "time"

// ChatHistory 外部聊天机器人回传的对话记录
type ChatHistory struct {
	BaseModel
	SourceID  uint   `gorm:"index;not null" json:"source_id"`
	UserID    uint   `gorm:"index" json:"user_id"`
	SessionID string `gorm:"size:100;index" json:"session_id"`

	Question string `gorm:"type:text" json:"question"`
	Answer   string `gorm:"type:text" json:"answer"`

	AskedAt time.Time `json:"asked_at"`
}

// SearchHistory 外部搜索入口回传的检索记录
type SearchHistory struct {
	BaseModel
	SourceID uint   `gorm:"index;not null" json:"source_id"`
	UserID   uint   `gorm:"index" json:"user_id"`

	Query      string    `gorm:"type:text" json:"query"`
	ResultNum  int       `json:"result_num"`
	SearchedAt time.Time `json:"searched_at"`
}
