package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"smartbill/internal/api/response"
	"smartbill/internal/model"
	"smartbill/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthController 处理用户认证
type AuthController struct {
	authService *service.AuthService
}

// NewAuthController 构造函数
func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=2,max=100"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

// Register 用户注册
// @Summary 用户注册
// @Description 创建新用户，密码至少6位且同时包含字母和数字
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "注册参数"
// @Success 200 {object} response.Response "Code=0 成功"
// @Failure 400 {object} response.Response "参数错误"
// @Router /register [post]
func (ctrl *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("Register params invalid", "err", err)
		response.Error(c, http.StatusBadRequest, "参数校验失败: "+err.Error())
		return
	}

	err := ctrl.authService.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		var vErr *model.ValidationError
		switch {
		case errors.As(err, &vErr):
			response.Error(c, http.StatusBadRequest, vErr.Message)
		case errors.Is(err, service.ErrUsernameTaken):
			response.Error(c, http.StatusBadRequest, err.Error())
		default:
			slog.Error("Register failed", "username", req.Username, "err", err)
			response.Error(c, http.StatusInternalServerError, "注册失败，请稍后重试")
		}
		return
	}

	slog.Info("User registered", "username", req.Username)
	response.Created(c, gin.H{
		"message":  "用户注册成功！请使用您的新账户登录。",
		"username": req.Username,
	})
}

// Login 用户登录
// @Summary 用户登录
// @Description 校验账号密码，颁发 JWT Token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "登录参数"
// @Success 200 {object} response.Response{data=LoginResponse} "包含 Token 和 UserID"
// @Router /login [post]
func (ctrl *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "参数格式错误")
		return
	}

	token, userID, err := ctrl.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		slog.Warn("Login failed", "username", req.Username, "err", err)
		// 提示信息模糊化，防止撞库时探测用户名
		response.Error(c, http.StatusUnauthorized, "登录失败: 账号或密码错误")
		return
	}

	slog.Info("User logged in", "userID", userID)
	response.Success(c, LoginResponse{
		Token:  token,
		UserID: userID,
	})
}
