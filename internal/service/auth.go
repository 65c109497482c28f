package service

import (
	"context"
	"errors"
	"regexp"
	"time"

	"smartbill/internal/model"
	"smartbill/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameTaken      = errors.New("此用户名已被占用，请选择其他用户名")
	ErrInvalidCredentials = errors.New("账号或密码错误")
)

var (
	hasLetter = regexp.MustCompile(`[A-Za-z]`)
	hasDigit  = regexp.MustCompile(`\d`)
)

type AuthService struct {
	userRepo *repository.UserRepository
}

func NewAuthService(userRepo *repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// ValidatePassword 注册密码策略：至少 6 位，且同时包含字母和数字
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return &model.ValidationError{Field: "password", Message: "密码长度不能少于6个字符"}
	}
	if !hasLetter.MatchString(password) {
		return &model.ValidationError{Field: "password", Message: "密码必须包含至少一个字母"}
	}
	if !hasDigit.MatchString(password) {
		return &model.ValidationError{Field: "password", Message: "密码必须包含至少一个数字"}
	}
	return nil
}

// Register 注册逻辑
func (s *AuthService) Register(ctx context.Context, username, password string) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}

	// 先查占用，DB Unique Index 兜底并发注册
	taken, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return err
	}
	if taken {
		return ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	id, _ := uuid.NewV7()
	user := &model.User{
		ID:       id.String(),
		Username: username,
		Password: string(hash),
	}
	return s.userRepo.Create(ctx, user)
}

// Login 登录逻辑，返回 Token
func (s *AuthService) Login(ctx context.Context, username, password string) (string, string, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return "", "", ErrInvalidCredentials // 模糊报错为了安全
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", ErrInvalidCredentials
	}

	return s.generateToken(user.ID)
}

func (s *AuthService) generateToken(userID string) (string, string, error) {
	secret := viper.GetString("jwt.secret")
	expireHours := viper.GetInt("jwt.expire_hours")

	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour * time.Duration(expireHours)).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(secret))
	return ss, userID, err
}
