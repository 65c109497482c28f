package controller

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"smartbill/internal/api/middleware"
	"smartbill/internal/infrastructure/llm"
	"smartbill/internal/model"
	"smartbill/internal/service"

	"github.com/gin-gonic/gin"
)

// AIController 承载两个大模型入口：自然语言记账和账单问答
type AIController struct {
	extractService *service.ExtractService
	analyzeService *service.AnalyzeService
}

func NewAIController(extract *service.ExtractService, analyze *service.AnalyzeService) *AIController {
	return &AIController{
		extractService: extract,
		analyzeService: analyze,
	}
}

type ExtractRequest struct {
	Input string `json:"input" binding:"required"`
}

// ExtractResponse 提取成功的响应
// result 是模型返回的原始文本，前端出问题时可以直接展示给用户排查
type ExtractResponse struct {
	Status       string             `json:"status"`
	Message      string             `json:"message"`
	Result       string             `json:"result"`
	CreatedBills []model.BillRecord `json:"created_bills,omitempty"`
}

type AnalyzeRequest struct {
	Text                string                 `json:"text"`
	Bills               []service.BillSnapshot `json:"bills"`
	ConversationHistory []llm.Message          `json:"conversation_history"`
}

type AnalyzeResponse struct {
	Analysis            string        `json:"analysis"`
	ConversationHistory []llm.Message `json:"conversation_history"`
}

// Extract 自然语言记账
// @Summary 自然语言记账
// @Description 把一段消费描述交给大模型拆成结构化账单并落库
// @Tags AI
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ExtractRequest true "消费描述"
// @Success 200 {object} ExtractResponse
// @Failure 400 {object} ExtractResponse "一条账单都没解析出来"
// @Router /deepseek [post]
func (ctrl *AIController) Extract(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	slog.Info("收到记账提取请求", "uid", userID)

	result, err := ctrl.extractService.Extract(c.Request.Context(), userID, req.Input, time.Now())
	if err != nil {
		writeGatewayError(c, err)
		return
	}

	if len(result.Bills) == 0 {
		// 模型回了内容但一条都没解析出来：不是服务故障，按业务失败处理
		c.JSON(http.StatusBadRequest, ExtractResponse{
			Status:  "error",
			Message: "无法解析有效的账单信息",
			Result:  result.Raw,
		})
		return
	}

	c.JSON(http.StatusOK, ExtractResponse{
		Status:       "success",
		Message:      fmt.Sprintf("成功创建 %d 条账单记录", len(result.Bills)),
		Result:       result.Raw,
		CreatedBills: result.Bills,
	})
}

// Analyze 账单问答
// @Summary 账单问答
// @Description 基于前端缓存的账单数据回答问题，多轮上下文由前端原样带回
// @Tags AI
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AnalyzeRequest true "问题、账单快照和对话历史"
// @Success 200 {object} AnalyzeResponse
// @Router /analyze [post]
func (ctrl *AIController) Analyze(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}
	if req.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请输入您的问题。"})
		return
	}

	slog.Info("收到账单分析请求", "uid", userID, "history_len", len(req.ConversationHistory))

	result, err := ctrl.analyzeService.Analyze(c.Request.Context(), req.Text, req.Bills, req.ConversationHistory)
	if err != nil {
		writeGatewayError(c, err)
		return
	}

	c.JSON(http.StatusOK, AnalyzeResponse{
		Analysis:            result.Answer,
		ConversationHistory: result.History,
	})
}

// writeGatewayError 超时和其他失败分开提示，前者引导用户稍后重试
func writeGatewayError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, llm.ErrGatewayTimeout):
		slog.Error("补全服务超时", "error", err)
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "请求分析服务超时，请稍后重试。"})
	case errors.Is(err, llm.ErrEmptyCompletion):
		slog.Error("补全服务返回空内容", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "未能从分析服务获取有效结果。"})
	default:
		slog.Error("调用补全服务失败", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "调用分析服务时出错。"})
	}
}
