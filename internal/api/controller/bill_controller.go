package controller

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"smartbill/internal/api/middleware"
	"smartbill/internal/api/response"
	"smartbill/internal/model"
	"smartbill/internal/repository"
	"smartbill/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type BillController struct {
	service *service.BillService
}

// NewBillController 构造函数
func NewBillController(s *service.BillService) *BillController {
	return &BillController{service: s}
}

// BillRequest 创建/更新账单的请求体
type BillRequest struct {
	Remark   string          `json:"remark"`
	Amount   decimal.Decimal `json:"amount"`
	Type     model.BillType  `json:"type" binding:"required"`
	Category string          `json:"category" binding:"required"`
	Date     string          `json:"date" binding:"required"` // 格式 2006-01-02
}

// ListRequest 列表筛选参数
// type 和 category 支持英文逗号分隔传多个值，多值之间是"或"
type ListRequest struct {
	Type       string `form:"type"`
	Category   string `form:"category"`
	DateAfter  string `form:"date_after"`  // 格式 2006-01-02，含当天
	DateBefore string `form:"date_before"` // 格式 2006-01-02，含当天
	Search     string `form:"search"`
	Page       int    `form:"page,default=1"`
	PageSize   int    `form:"page_size"`
}

type ListResponse struct {
	List  []model.BillRecord `json:"list"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
}

func (r *BillRequest) toInput() (service.BillInput, error) {
	date, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return service.BillInput{}, &model.ValidationError{Field: "date", Message: "日期格式应为 YYYY-MM-DD"}
	}
	return service.BillInput{
		Remark:   r.Remark,
		Amount:   r.Amount,
		Type:     r.Type,
		Category: r.Category,
		Date:     date,
	}, nil
}

// writeBillError 把业务错误翻译成状态码，统一在一个地方维护
func writeBillError(c *gin.Context, err error) {
	var vErr *model.ValidationError
	switch {
	case errors.As(err, &vErr):
		response.Error(c, http.StatusBadRequest, vErr.Error())
	case errors.Is(err, service.ErrBillNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	default:
		slog.Error("账单操作失败", "error", err)
		response.Error(c, http.StatusInternalServerError, "操作失败，请稍后重试")
	}
}

// Create 新建账单
// @Summary 新建账单
// @Description 手动记一笔收入或支出
// @Tags Bill
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BillRequest true "账单内容"
// @Success 201 {object} response.Response{data=model.BillRecord}
// @Router /bills [post]
func (ctrl *BillController) Create(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	var req BillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	input, err := req.toInput()
	if err != nil {
		writeBillError(c, err)
		return
	}

	bill, err := ctrl.service.Create(c.Request.Context(), userID, input)
	if err != nil {
		writeBillError(c, err)
		return
	}
	response.Created(c, bill)
}

// List 获取账单列表
// @Summary 获取账单列表
// @Description 按收支方向、分类、日期区间和备注关键词筛选
// @Tags Bill
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=controller.ListResponse}
// @Router /bills [get]
func (ctrl *BillController) List(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "参数错误")
		return
	}

	filter := repository.BillFilter{
		UserID:   userID,
		Search:   req.Search,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.Type != "" {
		for _, t := range strings.Split(req.Type, ",") {
			filter.Types = append(filter.Types, model.BillType(strings.TrimSpace(t)))
		}
	}
	if req.Category != "" {
		for _, cat := range strings.Split(req.Category, ",") {
			filter.Categories = append(filter.Categories, strings.TrimSpace(cat))
		}
	}
	if req.DateAfter != "" {
		if t, err := time.Parse("2006-01-02", req.DateAfter); err == nil {
			t = model.DateOnly(t)
			filter.DateAfter = &t
		}
	}
	if req.DateBefore != "" {
		if t, err := time.Parse("2006-01-02", req.DateBefore); err == nil {
			t = model.DateOnly(t)
			filter.DateBefore = &t
		}
	}

	list, total, err := ctrl.service.List(c.Request.Context(), filter)
	if err != nil {
		slog.Error("获取账单列表失败", "error", err)
		response.Error(c, http.StatusInternalServerError, "获取列表失败")
		return
	}

	response.Success(c, ListResponse{
		List:  list,
		Total: total,
		Page:  req.Page,
	})
}

// Get 查询单条账单
// @Summary 查询单条账单
// @Tags Bill
// @Produce json
// @Security BearerAuth
// @Param id path int true "账单 ID"
// @Success 200 {object} response.Response{data=model.BillRecord}
// @Router /bills/{id} [get]
func (ctrl *BillController) Get(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	id, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	bill, err := ctrl.service.Get(c.Request.Context(), userID, id)
	if err != nil {
		writeBillError(c, err)
		return
	}
	response.Success(c, bill)
}

// Update 更新账单
// @Summary 更新账单
// @Description 整单覆盖更新，仅限本人操作
// @Tags Bill
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "账单 ID"
// @Param request body BillRequest true "更新内容"
// @Success 200 {object} response.Response{data=model.BillRecord}
// @Router /bills/{id} [put]
func (ctrl *BillController) Update(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	id, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	var req BillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	input, err := req.toInput()
	if err != nil {
		writeBillError(c, err)
		return
	}

	bill, err := ctrl.service.Update(c.Request.Context(), userID, id, input)
	if err != nil {
		writeBillError(c, err)
		return
	}
	response.Success(c, bill)
}

// Delete 删除账单
// @Summary 删除账单
// @Description 仅限本人操作，别人的账单视同不存在
// @Tags Bill
// @Produce json
// @Security BearerAuth
// @Param id path int true "账单 ID"
// @Success 200 {object} response.Response
// @Router /bills/{id} [delete]
func (ctrl *BillController) Delete(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	id, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	if err := ctrl.service.Delete(c.Request.Context(), userID, id); err != nil {
		writeBillError(c, err)
		return
	}
	response.Success(c, nil)
}

// TodaySummary 当日收支汇总
// @Summary 当日收支汇总
// @Description 没有账单时收入支出均为 0
// @Tags Bill
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=service.TodaySummary}
// @Router /bills/today_summary [get]
func (ctrl *BillController) TodaySummary(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	summary, err := ctrl.service.GetTodaySummary(c.Request.Context(), userID, time.Now())
	if err != nil {
		slog.Error("获取当日汇总失败", "error", err)
		response.Error(c, http.StatusInternalServerError, "获取汇总失败")
		return
	}
	response.Success(c, summary)
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, errors.New("id 必须是正整数")
	}
	return uint(id), nil
}
