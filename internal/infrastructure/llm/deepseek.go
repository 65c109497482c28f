package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/sashabaranov/go-openai"
)

// DeepSeekClient 通过 OpenAI 兼容协议访问 DeepSeek 的补全接口
// 请求体形如 {model, messages, temperature}，响应取 choices[0].message.content
type DeepSeekClient struct {
	modelName string
	client    *openai.Client
}

func NewDeepSeekClient(apiKey, baseURL, modelName string) *DeepSeekClient {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL

	return &DeepSeekClient{
		modelName: modelName,
		client:    openai.NewClientWithConfig(config),
	}
}

func (d *DeepSeekClient) Complete(ctx context.Context, messages []Message, temperature float32, timeout time.Duration) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	msgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       d.modelName,
		Messages:    msgs,
		Temperature: temperature,
	})
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w: %v", ErrGatewayTimeout, err)
		}
		return "", fmt.Errorf("调用补全接口失败: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

// isTimeout 区分“超时”和“其他失败”，两者对用户的提示不一样
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
