package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// 知识库来源类型
const (
	SourceTypeChat   = "chat"
	SourceTypeSearch = "search"
)

// AccessControl 知识库来源的访问控制 (JSON 列)
// 是/否 门控，没有级别概念：public 或命中 user_ids / team_ids 即可访问。
// 在存储边界一次性解析为结构体，业务层不再接触 JSON 字符串。
type AccessControl struct {
	Public  bool   `json:"public"`
	TeamIDs []uint `json:"team_ids"`
	UserIDs []uint `json:"user_ids"`
}

// Value 实现 driver.Valuer，写库时序列化
func (ac AccessControl) Value() (driver.Value, error) {
	return json.Marshal(ac)
}

// Scan 实现 sql.Scanner，读库时反序列化
func (ac *AccessControl) Scan(value interface{}) error {
	if value == nil {
		*ac = AccessControl{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New(fmt.Sprint("无法解析 AccessControl 列:", value))
	}
	return json.Unmarshal(data, ac)
}

// KnowledgeBaseSource 外部知识来源 (聊天机器人 / 搜索入口)
// 约束: (name, type) 必须唯一
type KnowledgeBaseSource struct {
	BaseModel
	Type string `gorm:"size:20;not null;index:idx_source_name_type,unique" json:"type"`
	Name string `gorm:"size:100;not null;index:idx_source_name_type,unique" json:"name"`
	URL  string `gorm:"size:255" json:"url"`

	AccessControl AccessControl `gorm:"type:json" json:"access_control"`
}

// IsValidSourceType 校验来源类型取值
func IsValidSourceType(t string) bool {
	return t == SourceTypeChat || t == SourceTypeSearch
}
