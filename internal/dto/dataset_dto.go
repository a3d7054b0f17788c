package dto

import "encoding/json"

type CreateProjectReq struct {
	Name           string          `json:"name" binding:"required,max=100"`
	Description    string          `json:"description" binding:"max=255"`
	EmbeddingModel string          `json:"embedding_model"`
	ChunkMethod    string          `json:"chunk_method"`
	ParserConfig   json.RawMessage `json:"parser_config"`
}

type CreateCategoryReq struct {
	ProjectID uint   `json:"project_id" binding:"required"`
	Name      string `json:"name" binding:"required,max=100"`
}

type CreateVersionReq struct {
	CategoryID uint   `json:"category_id" binding:"required"`
	Version    string `json:"version" binding:"required,max=50"`
	ServerID   uint   `json:"server_id" binding:"required"`
}

type CreateServerReq struct {
	Name    string `json:"name" binding:"required,max=100"`
	BaseURL string `json:"base_url" binding:"required,url"`
	APIKey  string `json:"api_key" binding:"required"`
}
