package service

import (
	"context"
	"errors"
	"time"

	"smartbill/internal/model"
	"smartbill/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrBillNotFound 账单不存在，或者不属于当前用户
// 越权访问也报这个错，不向非 owner 泄露账单是否存在
var ErrBillNotFound = errors.New("账单不存在")

// BillService 账单 CRUD 和汇总的业务逻辑
type BillService struct {
	repo repository.BillRepo
}

func NewBillService(repo repository.BillRepo) *BillService {
	return &BillService{repo: repo}
}

// BillInput 创建/更新账单的字段集合 (DTO)
type BillInput struct {
	Remark   string
	Amount   decimal.Decimal
	Type     model.BillType
	Category string
	Date     time.Time
}

// TodaySummary 当日收支汇总
type TodaySummary struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Date    string          `json:"date"`
}

// Create 新建账单，归属写死为当前用户
func (s *BillService) Create(ctx context.Context, userID string, in BillInput) (*model.BillRecord, error) {
	bill := &model.BillRecord{
		UserID:   userID,
		Remark:   in.Remark,
		Amount:   in.Amount.Round(2),
		Type:     in.Type,
		Category: in.Category,
		Date:     model.DateOnly(in.Date),
	}
	if err := bill.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, bill); err != nil {
		return nil, err
	}
	return bill, nil
}

// List 获取列表，筛选语义全部在仓储层实现，这里直接透传
func (s *BillService) List(ctx context.Context, filter repository.BillFilter) ([]model.BillRecord, int64, error) {
	return s.repo.List(ctx, filter)
}

// Get 查单条，查不到或者不是自己的都返回 ErrBillNotFound
func (s *BillService) Get(ctx context.Context, userID string, id uint) (*model.BillRecord, error) {
	bill, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBillNotFound
		}
		return nil, err
	}
	return bill, nil
}

// Update 整单覆盖更新，仅限本人操作
func (s *BillService) Update(ctx context.Context, userID string, id uint, in BillInput) (*model.BillRecord, error) {
	existing, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	existing.Remark = in.Remark
	existing.Amount = in.Amount.Round(2)
	existing.Type = in.Type
	existing.Category = in.Category
	existing.Date = model.DateOnly(in.Date)

	if err := existing.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Delete 删除账单，仅限本人操作
func (s *BillService) Delete(ctx context.Context, userID string, id uint) error {
	err := s.repo.Delete(ctx, userID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrBillNotFound
	}
	return err
}

// GetTodaySummary 统计今天的收入和支出总额，没有账单就是 0，不报错
func (s *BillService) GetTodaySummary(ctx context.Context, userID string, now time.Time) (*TodaySummary, error) {
	today := model.DateOnly(now)

	income, err := s.repo.SumByTypeOnDate(ctx, userID, today, model.TypeIncome)
	if err != nil {
		return nil, err
	}
	expense, err := s.repo.SumByTypeOnDate(ctx, userID, today, model.TypeExpense)
	if err != nil {
		return nil, err
	}

	return &TodaySummary{
		Income:  income,
		Expense: expense,
		Date:    today.Format("2006-01-02"),
	}, nil
}
