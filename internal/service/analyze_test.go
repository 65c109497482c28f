package service

import (
	"context"
	"fmt"
	"testing"

	"smartbill/internal/infrastructure/llm"
	"smartbill/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(i int) BillSnapshot {
	return BillSnapshot{
		Date:     "2024-03-21",
		Type:     model.TypeExpense,
		Category: "food",
		Amount:   decimal.NewFromInt(int64(i)),
		Remark:   fmt.Sprintf("第%d笔", i),
	}
}

func TestAnalyzeFirstTurnEmbedsBillTable(t *testing.T) {
	provider := &fakeProvider{response: "你这个月吃饭花了不少。"}
	svc := NewAnalyzeService(provider)

	bills := []BillSnapshot{
		{Date: "2024-03-21", Type: model.TypeExpense, Category: "food", Amount: decimal.RequireFromString("30.5"), Remark: "午饭"},
		{Date: "2024-03-20", Type: model.TypeIncome, Category: "salary", Amount: decimal.NewFromInt(5000), Remark: ""},
	}

	result, err := svc.Analyze(context.Background(), "我最近花钱多吗", bills, nil)
	require.NoError(t, err)

	// 首轮：system(账单) + user(问题)
	require.Len(t, provider.lastMessages, 2)
	sys := provider.lastMessages[0]
	assert.Equal(t, llm.RoleSystem, sys.Role)
	assert.Contains(t, sys.Content, "2024-03-21 | 支出 | 吃饭 | 30.50 | 午饭")
	// 空备注显示为"无"
	assert.Contains(t, sys.Content, "2024-03-20 | 收入 | 工资 | 5000.00 | 无")
	assert.Equal(t, llm.RoleUser, provider.lastMessages[1].Role)
	assert.Equal(t, "我最近花钱多吗", provider.lastMessages[1].Content)

	// 返回的历史是本次消息再加上助手回复，供下一轮原样带回
	require.Len(t, result.History, 3)
	assert.Equal(t, llm.RoleAssistant, result.History[2].Role)
	assert.Equal(t, "你这个月吃饭花了不少。", result.Answer)

	assert.InDelta(t, 0.3, float64(provider.lastTemperature), 0.001)
}

func TestAnalyzeEmbedsAtMost100Bills(t *testing.T) {
	provider := &fakeProvider{response: "ok"}
	svc := NewAnalyzeService(provider)

	bills := make([]BillSnapshot, 0, 150)
	for i := 0; i < 150; i++ {
		bills = append(bills, snapshot(i))
	}

	_, err := svc.Analyze(context.Background(), "统计一下", bills, nil)
	require.NoError(t, err)

	sys := provider.lastMessages[0].Content
	assert.Contains(t, sys, "第0笔")
	assert.Contains(t, sys, "第99笔")
	// 第 101 条开始被截掉
	assert.NotContains(t, sys, "第100笔")
	assert.NotContains(t, sys, "第149笔")
}

func TestAnalyzeReusesHistoryVerbatim(t *testing.T) {
	provider := &fakeProvider{response: "接着上次说。"}
	svc := NewAnalyzeService(provider)

	history := []llm.Message{
		{Role: llm.RoleSystem, Content: "既有上下文"},
		{Role: llm.RoleUser, Content: "第一个问题"},
		{Role: llm.RoleAssistant, Content: "第一个回答"},
	}
	// 带了历史就不再嵌账单，哪怕 bills 非空
	bills := []BillSnapshot{snapshot(1)}

	result, err := svc.Analyze(context.Background(), "那再细说说", bills, history)
	require.NoError(t, err)

	require.Len(t, provider.lastMessages, 4)
	assert.Equal(t, history, provider.lastMessages[:3])
	assert.NotContains(t, provider.lastMessages[0].Content, "第1笔")

	require.Len(t, result.History, 5)
	assert.Equal(t, "接着上次说。", result.History[4].Content)
}

func TestAnalyzeEmptyBillList(t *testing.T) {
	provider := &fakeProvider{response: "你还没有账单。"}
	svc := NewAnalyzeService(provider)

	_, err := svc.Analyze(context.Background(), "我花了多少钱", nil, nil)
	require.NoError(t, err)
	assert.Contains(t, provider.lastMessages[0].Content, "用户目前没有任何账单记录。")
}

func TestAnalyzeGatewayErrorPropagates(t *testing.T) {
	provider := &fakeProvider{err: llm.ErrGatewayTimeout}
	svc := NewAnalyzeService(provider)

	_, err := svc.Analyze(context.Background(), "问题", nil, nil)
	assert.ErrorIs(t, err, llm.ErrGatewayTimeout)
}
