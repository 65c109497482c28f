package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"smartbill/internal/infrastructure/llm"
	"smartbill/internal/model"

	"github.com/shopspring/decimal"
)

const (
	analyzeTemperature = 0.3
	// 对话路径的超时要给足，模型总结上百行账单不算快
	analyzeTimeout = 45 * time.Second

	// 首轮系统消息最多嵌入多少条账单
	maxContextBills = 100
)

// BillSnapshot 前端缓存下来的账单行，用于构建首轮对话的上下文
// 金额用 decimal 接收，数字和字符串两种 JSON 形式都能解析
type BillSnapshot struct {
	Date     string          `json:"date"`
	Type     model.BillType  `json:"type"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Remark   string          `json:"remark"`
}

// AnalyzeResult 一轮问答的结果，History 给调用方下一轮原样带回来
type AnalyzeResult struct {
	Answer  string
	History []llm.Message
}

// AnalyzeService 账单问答会话
// 服务端不保存任何会话状态，上下文完全由调用方携带
type AnalyzeService struct {
	llmClient llm.Provider
}

func NewAnalyzeService(llmClient llm.Provider) *AnalyzeService {
	return &AnalyzeService{llmClient: llmClient}
}

// Analyze 回答一个关于账单的问题
// 首轮对话把账单表格塞进系统消息；之后的轮次原样复用调用方带来的历史
func (s *AnalyzeService) Analyze(ctx context.Context, question string, bills []BillSnapshot, history []llm.Message) (*AnalyzeResult, error) {
	var messages []llm.Message
	if len(history) == 0 {
		messages = append(messages, llm.Message{
			Role:    llm.RoleSystem,
			Content: buildBillContext(bills),
		})
	} else {
		messages = append(messages, history...)
	}

	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: question,
	})

	answer, err := s.llmClient.Complete(ctx, messages, analyzeTemperature, analyzeTimeout)
	if err != nil {
		return nil, err
	}

	return &AnalyzeResult{
		Answer:  answer,
		History: append(messages, llm.Message{Role: llm.RoleAssistant, Content: answer}),
	}, nil
}

// buildBillContext 把账单格式化成人类可读的表格，拼进系统提示词
func buildBillContext(bills []BillSnapshot) string {
	var formatted string
	if len(bills) == 0 {
		formatted = "用户目前没有任何账单记录。"
	} else {
		if len(bills) > maxContextBills {
			bills = bills[:maxContextBills]
		}
		lines := []string{
			"日期 | 收支 | 类型 | 金额 | 备注",
			"-----------------------------------",
		}
		for _, b := range bills {
			remark := b.Remark
			if remark == "" {
				remark = "无"
			}
			lines = append(lines, fmt.Sprintf("%s | %s | %s | %s | %s",
				b.Date,
				model.TypeLabel(b.Type),
				model.CategoryLabel(b.Type, b.Category),
				b.Amount.StringFixed(2),
				remark,
			))
		}
		formatted = strings.Join(lines, "\n")
	}

	return fmt.Sprintf(`你是一个智能账单分析助手。以下是用户的账单记录：

--- 开始账单记录 ---
%s
--- 结束账单记录 ---

请注意：
- 你的回答应主要基于上面提供的账单数据。
- 如果数据中没有足够的信息来回答问题，请明确说明。
- 不要编造数据或回答数据之外的信息。
- 请用自然、流畅的中文来回答问题，就像与人对话一样。`, formatted)
}
