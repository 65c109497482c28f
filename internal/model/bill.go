package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BillType 收支方向
type BillType string

const (
	TypeIncome  BillType = "income"
	TypeExpense BillType = "expense"
)

// TypeLabels 收支方向的中文展示名，同时也是 LLM 输出里出现的字样
var TypeLabels = map[BillType]string{
	TypeIncome:  "收入",
	TypeExpense: "支出",
}

// IncomeCategories / ExpenseCategories 是 code -> 中文标签 的枚举表
// category 的合法取值由 type 决定，两张表互不相通
var IncomeCategories = map[string]string{
	"salary":     "工资",
	"bonus":      "奖金",
	"red_packet": "红包",
	"other":      "其他",
}

var ExpenseCategories = map[string]string{
	"food":           "吃饭",
	"shopping":       "购物",
	"entertainment":  "娱乐",
	"living":         "生活",
	"housing":        "住房",
	"work":           "工作",
	"transportation": "交通",
	"medical":        "医疗",
	"pet":            "宠物",
}

// categoryLabelToCode 是 LLM 返回的中文类型 -> 存储 code 的映射
// 收入和支出共用一张表，查不到时按方向兜底（收入->other，支出->living）
var categoryLabelToCode = map[string]string{
	"工资": "salary",
	"奖金": "bonus",
	"红包": "red_packet",
	"吃饭": "food",
	"购物": "shopping",
	"娱乐": "entertainment",
	"生活": "living",
	"住房": "housing",
	"工作": "work",
	"交通": "transportation",
	"医疗": "medical",
	"宠物": "pet",
}

// BillRecord 是映射 bills 表的结构体
type BillRecord struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// 归属用户，所有查询都必须带上这个条件
	UserID string `gorm:"type:varchar(36);index" json:"user_id"`

	Remark   string          `gorm:"type:varchar(255)" json:"remark"`
	Amount   decimal.Decimal `gorm:"type:decimal(10,2)" json:"amount"`
	Type     BillType        `gorm:"type:varchar(10)" json:"type"`
	Category string          `gorm:"type:varchar(20)" json:"category"`

	// 账单的业务日期（只有日期，没有时间），可以和 CreatedAt 不同
	Date time.Time `gorm:"type:date" json:"date"`
}

// TableName 强制指定表名
func (BillRecord) TableName() string {
	return "bills"
}

// ValidationError 字段级校验错误
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CategoriesFor 返回某个收支方向下合法的 code -> 标签 表
func CategoriesFor(t BillType) map[string]string {
	if t == TypeIncome {
		return IncomeCategories
	}
	return ExpenseCategories
}

// Validate 校验核心不变量：type 合法、category 属于 type 对应的枚举、金额非负
func (b *BillRecord) Validate() error {
	if b.Type != TypeIncome && b.Type != TypeExpense {
		return &ValidationError{Field: "type", Message: "收支类型必须是 income 或 expense"}
	}
	if _, ok := CategoriesFor(b.Type)[b.Category]; !ok {
		return &ValidationError{Field: "category", Message: fmt.Sprintf("分类 %q 不属于 %s 类型", b.Category, b.Type)}
	}
	if b.Amount.IsNegative() {
		return &ValidationError{Field: "amount", Message: "金额不能为负数"}
	}
	return nil
}

// CategoryLabel 把存储 code 转回中文标签，查不到时原样返回
func CategoryLabel(t BillType, code string) string {
	if label, ok := CategoriesFor(t)[code]; ok {
		return label
	}
	return code
}

// MapCategoryLabel 把 LLM 输出的中文标签映射为存储 code
// 注意兜底的不对称：收入默认 other，支出默认 living（沿用线上行为）
func MapCategoryLabel(label string, t BillType) string {
	if code, ok := categoryLabelToCode[label]; ok {
		if _, valid := CategoriesFor(t)[code]; valid {
			return code
		}
	}
	if t == TypeIncome {
		return "other"
	}
	return "living"
}

// DateOnly 把时间戳截断成纯日期（UTC 零点）
// date 列只存日期，入库前统一走这里，避免同一天因为时分秒不同而查不出来
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// TypeLabel 收支方向的中文展示名
func TypeLabel(t BillType) string {
	if label, ok := TypeLabels[t]; ok {
		return label
	}
	return string(t)
}
