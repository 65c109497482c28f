package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateCategoryMatchesType(t *testing.T) {
	cases := []struct {
		name     string
		billType BillType
		category string
		wantOK   bool
	}{
		{"收入+工资", TypeIncome, "salary", true},
		{"收入+红包", TypeIncome, "red_packet", true},
		{"支出+吃饭", TypeExpense, "food", true},
		{"支出+宠物", TypeExpense, "pet", true},
		{"收入配支出分类", TypeIncome, "food", false},
		{"支出配收入分类", TypeExpense, "salary", false},
		{"未知分类", TypeExpense, "whatever", false},
		{"未知收支类型", BillType("transfer"), "food", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bill := &BillRecord{
				UserID:   "u1",
				Type:     tc.billType,
				Category: tc.category,
				Amount:   decimal.NewFromInt(10),
				Date:     DateOnly(time.Now()),
			}
			err := bill.Validate()
			if tc.wantOK {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				var vErr *ValidationError
				assert.ErrorAs(t, err, &vErr)
			}
		})
	}
}

func TestValidateRejectsNegativeAmount(t *testing.T) {
	bill := &BillRecord{
		Type:     TypeExpense,
		Category: "food",
		Amount:   decimal.NewFromInt(-1),
	}
	err := bill.Validate()
	assert.Error(t, err)
}

func TestMapCategoryLabel(t *testing.T) {
	assert.Equal(t, "shopping", MapCategoryLabel("购物", TypeExpense))
	assert.Equal(t, "salary", MapCategoryLabel("工资", TypeIncome))
	assert.Equal(t, "red_packet", MapCategoryLabel("红包", TypeIncome))

	// 兜底是不对称的：收入走 other，支出走 living
	assert.Equal(t, "other", MapCategoryLabel("彩票", TypeIncome))
	assert.Equal(t, "living", MapCategoryLabel("彩票", TypeExpense))
	assert.Equal(t, "other", MapCategoryLabel("", TypeIncome))
	assert.Equal(t, "living", MapCategoryLabel("", TypeExpense))

	// 标签查得到但方向不匹配，同样走兜底
	assert.Equal(t, "other", MapCategoryLabel("购物", TypeIncome))
	assert.Equal(t, "living", MapCategoryLabel("工资", TypeExpense))
}

func TestCategoryAndTypeLabels(t *testing.T) {
	assert.Equal(t, "吃饭", CategoryLabel(TypeExpense, "food"))
	assert.Equal(t, "工资", CategoryLabel(TypeIncome, "salary"))
	// 查不到原样返回，问答上下文里至少还能看懂
	assert.Equal(t, "unknown", CategoryLabel(TypeExpense, "unknown"))

	assert.Equal(t, "收入", TypeLabel(TypeIncome))
	assert.Equal(t, "支出", TypeLabel(TypeExpense))
}

func TestDateOnly(t *testing.T) {
	ts := time.Date(2024, 3, 21, 15, 4, 5, 123, time.FixedZone("CST", 8*3600))
	got := DateOnly(ts)
	assert.Equal(t, time.Date(2024, 3, 21, 0, 0, 0, 0, time.UTC), got)
}
