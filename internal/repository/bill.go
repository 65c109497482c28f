package repository

import (
	"context"
	"strings"
	"time"

	"smartbill/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BillFilter 列表筛选条件
// 同一维度内多值是 OR（type=income,expense 等于不筛），不同维度之间是 AND
type BillFilter struct {
	UserID     string
	Types      []model.BillType
	Categories []string
	DateAfter  *time.Time // 闭区间下界
	DateBefore *time.Time // 闭区间上界
	Search     string     // remark 模糊匹配，大小写不敏感
	Page       int
	PageSize   int
}

// BillRepo 定义接口 (为了以后方便 Mock)
// 所有方法都带 userID 条件，越权访问在这一层就查不到数据
type BillRepo interface {
	Create(ctx context.Context, bill *model.BillRecord) error
	List(ctx context.Context, filter BillFilter) ([]model.BillRecord, int64, error)
	GetByID(ctx context.Context, userID string, id uint) (*model.BillRecord, error)
	Update(ctx context.Context, bill *model.BillRecord) error
	Delete(ctx context.Context, userID string, id uint) error
	SumByTypeOnDate(ctx context.Context, userID string, date time.Time, t model.BillType) (decimal.Decimal, error)
}

type billRepo struct {
	db *gorm.DB
}

// NewBillRepo 构造函数
func NewBillRepo(db *gorm.DB) BillRepo {
	return &billRepo{db: db}
}

// Create 插入一条记录，单条创建本身就是一个事务
func (r *billRepo) Create(ctx context.Context, bill *model.BillRecord) error {
	// WithContext 确保请求超时能传递到数据库层
	return r.db.WithContext(ctx).Create(bill).Error
}

// List 按条件查询，默认排序：业务日期倒序，再按创建时间倒序
func (r *billRepo) List(ctx context.Context, filter BillFilter) ([]model.BillRecord, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.BillRecord{}).
		Where("user_id = ?", filter.UserID)

	if len(filter.Types) > 0 {
		query = query.Where("type IN ?", filter.Types)
	}
	if len(filter.Categories) > 0 {
		// IN 查询天然就是分类间的 OR
		query = query.Where("category IN ?", filter.Categories)
	}
	if filter.DateAfter != nil {
		query = query.Where("date >= ?", *filter.DateAfter)
	}
	if filter.DateBefore != nil {
		query = query.Where("date <= ?", *filter.DateBefore)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(remark) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("date DESC, created_at DESC")
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var bills []model.BillRecord
	if err := query.Find(&bills).Error; err != nil {
		return nil, 0, err
	}
	return bills, total, nil
}

// GetByID 只能查到自己的账单，别人的等同于不存在
func (r *billRepo) GetByID(ctx context.Context, userID string, id uint) (*model.BillRecord, error) {
	var bill model.BillRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&bill, id).Error
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

func (r *billRepo) Update(ctx context.Context, bill *model.BillRecord) error {
	return r.db.WithContext(ctx).Save(bill).Error
}

func (r *billRepo) Delete(ctx context.Context, userID string, id uint) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.BillRecord{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SumByTypeOnDate 汇总某天某个收支方向的总额，没有数据返回 0
func (r *billRepo) SumByTypeOnDate(ctx context.Context, userID string, date time.Time, t model.BillType) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&model.BillRecord{}).
		Where("user_id = ? AND date = ? AND type = ?", userID, date, t).
		Select("SUM(amount)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
