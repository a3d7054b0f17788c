package model

// RagflowServer 已接入的 RAGFlow 服务记录
// 每次代理调用时按 ID 动态解析凭证，记录缺失或停用则调用失败
type RagflowServer struct {
	BaseModel
	Name    string `gorm:"size:100;not null" json:"name"`
	BaseURL string `gorm:"size:255;not null" json:"base_url"`
	APIKey  string `gorm:"size:255;not null" json:"-"`
	Active  bool   `gorm:"default:true" json:"active"`
}
