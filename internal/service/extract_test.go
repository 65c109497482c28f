package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"smartbill/internal/infrastructure/llm"
	"smartbill/internal/model"
	"smartbill/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider 记录入参并返回预设结果
type fakeProvider struct {
	response string
	err      error

	lastMessages    []llm.Message
	lastTemperature float32
	lastTimeout     time.Duration
}

func (f *fakeProvider) Complete(_ context.Context, messages []llm.Message, temperature float32, timeout time.Duration) (string, error) {
	f.lastMessages = messages
	f.lastTemperature = temperature
	f.lastTimeout = timeout
	return f.response, f.err
}

// fakeBillRepo 内存版 BillRepo，只实现测试用到的部分
type fakeBillRepo struct {
	bills  []model.BillRecord
	nextID uint
	failAt int // 第 N 次 Create 返回错误，0 表示从不失败
	calls  int
}

func (r *fakeBillRepo) Create(_ context.Context, bill *model.BillRecord) error {
	r.calls++
	if r.failAt > 0 && r.calls == r.failAt {
		return errors.New("db down")
	}
	r.nextID++
	bill.ID = r.nextID
	r.bills = append(r.bills, *bill)
	return nil
}

func (r *fakeBillRepo) List(context.Context, repository.BillFilter) ([]model.BillRecord, int64, error) {
	return r.bills, int64(len(r.bills)), nil
}

func (r *fakeBillRepo) GetByID(context.Context, string, uint) (*model.BillRecord, error) {
	return nil, errors.New("not implemented")
}

func (r *fakeBillRepo) Update(context.Context, *model.BillRecord) error { return nil }

func (r *fakeBillRepo) Delete(context.Context, string, uint) error { return nil }

func (r *fakeBillRepo) SumByTypeOnDate(context.Context, string, time.Time, model.BillType) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

var testToday = time.Date(2024, 3, 22, 10, 30, 0, 0, time.UTC)

func TestParseBillLine(t *testing.T) {
	today := model.DateOnly(testToday)

	t.Run("标准支出行", func(t *testing.T) {
		bill, ok := parseBillLine("2024-03-21|支出|300|购物|李宁运动鞋", today)
		require.True(t, ok)
		assert.Equal(t, model.TypeExpense, bill.Type)
		assert.Equal(t, "shopping", bill.Category)
		assert.True(t, bill.Amount.Equal(decimal.NewFromInt(300)), "amount=%s", bill.Amount)
		assert.Equal(t, time.Date(2024, 3, 21, 0, 0, 0, 0, time.UTC), bill.Date)
		assert.Equal(t, "李宁运动鞋", bill.Remark)
	})

	t.Run("收入行", func(t *testing.T) {
		bill, ok := parseBillLine("2024-03-21|收入|5000|工资|3月工资", today)
		require.True(t, ok)
		assert.Equal(t, model.TypeIncome, bill.Type)
		assert.Equal(t, "salary", bill.Category)
	})

	t.Run("字段数不是5个", func(t *testing.T) {
		_, ok := parseBillLine("2024-03-21|支出|300|购物", today)
		assert.False(t, ok)
		_, ok = parseBillLine("a|b|c|d|e|f", today)
		assert.False(t, ok)
	})

	t.Run("收支为空必须丢弃", func(t *testing.T) {
		_, ok := parseBillLine("||300|购物|运动鞋", today)
		assert.False(t, ok)
	})

	t.Run("金额为空必须丢弃", func(t *testing.T) {
		_, ok := parseBillLine("2024-03-21|支出||购物|运动鞋", today)
		assert.False(t, ok)
	})

	t.Run("金额带货币符号和千分位", func(t *testing.T) {
		bill, ok := parseBillLine("2024-03-21|支出|¥1,234.50|购物|手机", today)
		require.True(t, ok)
		assert.Equal(t, "1234.5", bill.Amount.String())
	})

	t.Run("金额解析失败丢弃", func(t *testing.T) {
		_, ok := parseBillLine("2024-03-21|支出|三百|购物|运动鞋", today)
		assert.False(t, ok)
	})

	t.Run("日期为空兜底为今天", func(t *testing.T) {
		bill, ok := parseBillLine("|支出|300|购物|运动鞋", today)
		require.True(t, ok)
		assert.Equal(t, today, bill.Date)
	})

	t.Run("日期格式错误兜底为今天", func(t *testing.T) {
		bill, ok := parseBillLine("昨天|支出|300|购物|运动鞋", today)
		require.True(t, ok)
		assert.Equal(t, today, bill.Date)
	})

	t.Run("未知分类走兜底", func(t *testing.T) {
		bill, ok := parseBillLine("2024-03-21|支出|300|不认识|某某", today)
		require.True(t, ok)
		assert.Equal(t, "living", bill.Category)

		bill, ok = parseBillLine("2024-03-21|收入|300|不认识|某某", today)
		require.True(t, ok)
		assert.Equal(t, "other", bill.Category)
	})
}

func TestExtractSkipsBadLinesWithoutAborting(t *testing.T) {
	provider := &fakeProvider{response: `2024-03-21|支出|300|购物|李宁运动鞋
这不是一个有效的行
||300|购物|运动鞋
2024-03-21|收入|5000|工资|3月工资`}
	repo := &fakeBillRepo{}
	svc := NewExtractService(provider, repo)

	result, err := svc.Extract(context.Background(), "u1", "随便说点什么", testToday)
	require.NoError(t, err)

	// 坏行只跳过自己，后面的好行照常入库
	require.Len(t, result.Bills, 2)
	assert.Equal(t, model.TypeExpense, result.Bills[0].Type)
	assert.Equal(t, model.TypeIncome, result.Bills[1].Type)
	assert.Equal(t, "u1", result.Bills[0].UserID)
	assert.Equal(t, provider.response, result.Raw)

	// 提取走低温
	assert.InDelta(t, 0.1, float64(provider.lastTemperature), 0.001)
}

func TestExtractNoValidLines(t *testing.T) {
	provider := &fakeProvider{response: "抱歉，我没有发现任何消费信息。"}
	repo := &fakeBillRepo{}
	svc := NewExtractService(provider, repo)

	result, err := svc.Extract(context.Background(), "u1", "今天天气不错", testToday)
	require.NoError(t, err)
	// 不算错误：原始文本带回去给用户看
	assert.Empty(t, result.Bills)
	assert.Equal(t, provider.response, result.Raw)
}

func TestExtractGatewayErrorPropagates(t *testing.T) {
	provider := &fakeProvider{err: llm.ErrGatewayTimeout}
	svc := NewExtractService(provider, &fakeBillRepo{})

	_, err := svc.Extract(context.Background(), "u1", "打车25", testToday)
	assert.ErrorIs(t, err, llm.ErrGatewayTimeout)
}

func TestExtractSingleCreateFailureDoesNotAbortBatch(t *testing.T) {
	provider := &fakeProvider{response: `2024-03-21|支出|300|购物|A
2024-03-21|支出|100|吃饭|B
2024-03-21|支出|50|交通|C`}
	repo := &fakeBillRepo{failAt: 2}
	svc := NewExtractService(provider, repo)

	result, err := svc.Extract(context.Background(), "u1", "x", testToday)
	require.NoError(t, err)
	require.Len(t, result.Bills, 2)
	assert.Equal(t, "A", result.Bills[0].Remark)
	assert.Equal(t, "C", result.Bills[1].Remark)
}

func TestBuildExtractionPromptResolvesRelativeDates(t *testing.T) {
	prompt := buildExtractionPrompt("昨天吃饭花了30", model.DateOnly(testToday))
	assert.Contains(t, prompt, "今天是 2024-03-22")
	assert.Contains(t, prompt, `如果提到"昨天"，就用 2024-03-21 表示`)
	assert.Contains(t, prompt, `如果提到"前天"，就用 2024-03-20 表示`)
	assert.Contains(t, prompt, "昨天吃饭花了30")
}
