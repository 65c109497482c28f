package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"smartbill/internal/infrastructure/llm"
	"smartbill/internal/model"
	"smartbill/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	// 低温有助于输出格式稳定
	extractTemperature = 0.1
	extractTimeout     = 90 * time.Second
)

// amountCleaner 去掉货币符号和千分位
var amountCleaner = strings.NewReplacer("¥", "", ",", "")

// ExtractService 把自然语言的消费描述变成结构化账单
type ExtractService struct {
	llmClient llm.Provider
	repo      repository.BillRepo
}

func NewExtractService(llmClient llm.Provider, repo repository.BillRepo) *ExtractService {
	return &ExtractService{llmClient: llmClient, repo: repo}
}

// ExtractResult 一次提取的结果
// Raw 始终保留，即使一条都没解析出来，也要让用户看到模型到底返回了什么
type ExtractResult struct {
	Raw   string
	Bills []model.BillRecord
}

// Extract 完整流水线：拼 Prompt -> 调模型 -> 逐行解析落库
// 单行解析失败只跳过该行，不中断整批
func (s *ExtractService) Extract(ctx context.Context, userID, input string, now time.Time) (*ExtractResult, error) {
	today := model.DateOnly(now)
	prompt := buildExtractionPrompt(input, today)

	raw, err := s.llmClient.Complete(ctx, []llm.Message{
		{Role: llm.RoleUser, Content: prompt},
	}, extractTemperature, extractTimeout)
	if err != nil {
		return nil, err
	}

	result := &ExtractResult{Raw: raw}
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		bill, ok := parseBillLine(line, today)
		if !ok {
			slog.Warn("跳过无法解析的行", "line", line)
			continue
		}
		bill.UserID = userID

		// 逐条落库：一条失败不影响其他行，这是有意为之的
		if err := s.repo.Create(ctx, bill); err != nil {
			slog.Error("创建账单失败", "line", line, "error", err)
			continue
		}
		result.Bills = append(result.Bills, *bill)
	}

	return result, nil
}

// parseBillLine 解析单行 "日期|收支|金额|类型|备注"
// 必须恰好 5 个字段；收支和金额是必填项，缺了整行丢弃
func parseBillLine(line string, today time.Time) (*model.BillRecord, bool) {
	fields := strings.Split(line, "|")
	if len(fields) != 5 {
		return nil, false
	}

	dateStr := strings.TrimSpace(fields[0])
	typeStr := strings.TrimSpace(fields[1])
	amountStr := strings.TrimSpace(fields[2])
	categoryLabel := strings.TrimSpace(fields[3])
	remark := strings.TrimSpace(fields[4])

	if typeStr == "" || amountStr == "" {
		return nil, false
	}

	billType := model.TypeExpense
	if strings.Contains(typeStr, "收入") {
		billType = model.TypeIncome
	}

	amount, err := decimal.NewFromString(amountCleaner.Replace(amountStr))
	if err != nil || amount.IsNegative() {
		return nil, false
	}

	// 日期解析失败或留空都兜底为今天
	date := today
	if dateStr != "" {
		if parsed, err := time.Parse("2006-01-02", dateStr); err == nil {
			date = model.DateOnly(parsed)
		}
	}

	return &model.BillRecord{
		Type:     billType,
		Amount:   amount.Round(2),
		Date:     date,
		Category: model.MapCategoryLabel(categoryLabel, billType),
		Remark:   remark,
	}, true
}

// buildExtractionPrompt 拼接提取 Prompt
// 相对日期（今天/昨天/前天）在这里就换算成具体日期，模型只管照抄
func buildExtractionPrompt(input string, today time.Time) string {
	todayStr := today.Format("2006-01-02")
	yesterdayStr := today.AddDate(0, 0, -1).Format("2006-01-02")
	beforeStr := today.AddDate(0, 0, -2).Format("2006-01-02")

	return fmt.Sprintf(`今天是 %s，请帮我分析以下消费收入信息，将其按照时间、收入/支出、金额、类型、备注五个字段进行整理。备注中需要包含具体的商品名称、活动内容等详细信息。

时间处理规则：
- 如果提到"今天"，就用 %s 表示；
- 如果提到"昨天"，就用 %s 表示；
- 如果提到"前天"，就用 %s 表示；
- 如果没有提供具体日期，则使用今天的日期。

类型识别规则：
1. 饮食类：
- 如果提到"吃"、"喝"、"饭"、"餐"、"菜"、"火锅"、"烧烤"、"外卖"、"零食"、"水果"、"超市"等饮食相关词，记为"吃饭"

2. 购物类：
- 如果提到"买"、"购"、"衣服"、"裤子"、"鞋"、"包"、"电子产品"、"数码"、"家电"、"网购"、"淘宝"、"京东"等购物相关词，记为"购物"

3. 娱乐类：
- 如果提到"电影"、"游戏"、"KTV"、"唱歌"、"旅游"、"度假"、"健身"、"运动"、"演唱会"、"展览"、"门票"、"玩"等娱乐相关词，记为"娱乐"

4. 住房类：
- 如果提到"房租"、"水电"、"物业"、"维修"、"装修"、"家具"、"家居"、"电费"、"水费"、"燃气费"、"宽带"、"房贷"等住房相关词，记为"住房"

5. 工作类：
- 如果提到"办公"、"文具"、"打印"、"复印"、"培训"、"课程"、"考试"、"认证"、"工作餐"、"加班"、"差旅"等工作相关词，记为"工作"

6. 交通类：
- 如果提到"地铁"、"公交"、"打车"、"滴滴"、"高铁"、"火车"、"飞机"、"机票"、"加油"、"停车"、"汽车"、"修车"等交通相关词，记为"交通"

7. 医疗类：
- 如果提到"医院"、"看病"、"药"、"体检"、"门诊"、"挂号"、"手术"、"治疗"、"保健"、"医保"、"牙科"等医疗相关词，记为"医疗"

8. 宠物类：
- 如果提到"宠物"、"猫"、"狗"、"兽医"、"宠物医院"、"宠物食品"、"猫粮"、"狗粮"、"宠物用品"、"洗澡"、"美容"等宠物相关词，记为"宠物"

9. 收入类：
- 如果提到"工资"、"薪水"、"工钱"，记为"工资"
- 如果提到"奖金"、"奖励"、"年终奖"、"提成"，记为"奖金"
- 如果提到"红包"、"压岁钱"，记为"红包"
- 其他收入类型记为"其他"

10. 其他支出：
- 不属于以上类型的支出记为"生活"

需要分析的信息：
%s

请严格按照以下格式返回（注意用|分隔，不要有多余空格）：
时间|收入/支出|金额|类型|备注
2024-03-21|支出|300|购物|李宁运动鞋
2024-03-21|收入|5000|工资|3月工资

只返回数据行，不要表头，不要其他解释。如果某个字段信息不存在，该位置留空，但分隔符要保留。例如：
||300|购物|运动鞋`, todayStr, todayStr, yesterdayStr, beforeStr, input)
}
