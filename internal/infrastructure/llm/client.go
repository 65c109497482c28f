package llm

import (
	"context"
	"errors"
	"time"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message 对话里的一轮消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ErrGatewayTimeout 外部服务在超时时间内没有响应
// 单独区分出来是为了让上层能提示用户“稍后重试”，而不是笼统的服务出错
var ErrGatewayTimeout = errors.New("补全服务请求超时")

// ErrEmptyCompletion 外部服务返回了 2xx 但响应体里没有可用的补全内容
var ErrEmptyCompletion = errors.New("补全服务未返回有效内容")

// Provider 定义了 LLM 的通用行为
type Provider interface {
	// Complete 发送一次完整的对话请求，返回模型回复的原始文本
	// 单次调用，不做重试，失败直接抛给调用方决定
	Complete(ctx context.Context, messages []Message, temperature float32, timeout time.Duration) (string, error)
}
