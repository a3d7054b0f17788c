package service

import "errors"

// 业务错误哨兵，Handler 层据此映射 HTTP 状态码
// 注意：权限检查的否定结果 (false / NONE) 不是错误，不走这里
var (
	ErrNotFound     = errors.New("资源不存在")
	ErrConflict     = errors.New("资源已存在")
	ErrRemote       = errors.New("远程服务调用失败")
	ErrInvalidInput = errors.New("参数校验失败")
	ErrForbidden    = errors.New("权限不足")
)

// Actor 操作者上下文，仅用于审计，不参与权限判定
type Actor struct {
	ID    uint
	Email string
	IP    string
}
