package ragflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"kb-portal/internal/model"

	"gorm.io/gorm"
)

// 服务器解析失败的错误，上层据此区分 404 和 502
var (
	ErrServerNotFound = errors.New("ragflow 服务器不存在")
	ErrServerInactive = errors.New("ragflow 服务器已停用")
)

// Dataset RAGFlow 数据集 (远端返回的字段子集)
type Dataset struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	EmbeddingModel string          `json:"embedding_model"`
	ChunkMethod    string          `json:"chunk_method"`
	ParserConfig   json.RawMessage `json:"parser_config"`
	DocumentCount  int             `json:"document_count"`
	ChunkCount     int             `json:"chunk_count"`
}

// CreateDatasetReq 创建数据集参数
type CreateDatasetReq struct {
	Name           string          `json:"name"`
	EmbeddingModel string          `json:"embedding_model"`
	ChunkMethod    string          `json:"chunk_method"`
	ParserConfig   json.RawMessage `json:"parser_config,omitempty"`
}

// envelope RAGFlow 统一响应包: code 非 0 即失败
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client RAGFlow 代理客户端
// 无状态：每次调用按 serverID 从库里解析地址和凭证
type Client struct {
	db   *gorm.DB
	http *http.Client
}

func NewClient(db *gorm.DB, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		db:   db,
		http: &http.Client{Timeout: timeout},
	}
}

// CreateDataset 创建远端数据集
func (c *Client) CreateDataset(ctx context.Context, serverID uint, req CreateDatasetReq) (*Dataset, error) {
	server, err := c.resolveServer(serverID)
	if err != nil {
		return nil, err
	}

	data, err := c.do(ctx, server, http.MethodPost, "/api/v1/datasets", req)
	if err != nil {
		return nil, err
	}

	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("ragflow 响应解析失败: %v", err)
	}
	return &ds, nil
}

// ListDatasets 查询数据集列表，query 支持 id / name 过滤
func (c *Client) ListDatasets(ctx context.Context, serverID uint, query map[string]string) ([]Dataset, error) {
	server, err := c.resolveServer(serverID)
	if err != nil {
		return nil, err
	}

	path := "/api/v1/datasets"
	if len(query) > 0 {
		q := url.Values{}
		for k, v := range query {
			q.Set(k, v)
		}
		path += "?" + q.Encode()
	}

	data, err := c.do(ctx, server, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var list []Dataset
	if len(data) > 0 && string(data) != "null" {
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("ragflow 响应解析失败: %v", err)
		}
	}
	return list, nil
}

// DeleteDatasets 批量删除远端数据集
func (c *Client) DeleteDatasets(ctx context.Context, serverID uint, ids []string) error {
	server, err := c.resolveServer(serverID)
	if err != nil {
		return err
	}

	body := map[string][]string{"ids": ids}
	_, err = c.do(ctx, server, http.MethodDelete, "/api/v1/datasets", body)
	return err
}

// resolveServer 按 ID 动态解析服务器记录
func (c *Client) resolveServer(serverID uint) (*model.RagflowServer, error) {
	var server model.RagflowServer
	if err := c.db.First(&server, serverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServerNotFound
		}
		return nil, err
	}
	if !server.Active {
		return nil, ErrServerInactive
	}
	return &server, nil
}

// do 发送请求并拆包，code 非 0 直接转为错误
func (c *Client) do(ctx context.Context, server *model.RagflowServer, method, path string, body interface{}) (json.RawMessage, error) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	fullURL := strings.TrimRight(server.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+server.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ragflow 请求失败: %v", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("ragflow 响应格式错误 (HTTP %d): %v", resp.StatusCode, err)
	}
	if env.Code != 0 {
		return nil, fmt.Errorf("ragflow 返回错误 (code=%d): %s", env.Code, env.Message)
	}
	return env.Data, nil
}
