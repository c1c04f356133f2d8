package service

import (
	"crypto/subtle"
	"errors"
	"time"

	"poster_shop/pkg/logger"
	"poster_shop/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials 用户名或密码错误
var ErrInvalidCredentials = errors.New("invalid username or password")

// Token 登录成功后签发的访问令牌
type Token struct {
	AccessToken string    `json:"token"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// AuthService 店员后台登录。只有一个管理员账号，密码以 bcrypt 哈希保存在配置中
type AuthService interface {
	Login(username, password string) (*Token, error)
}

type authService struct {
	username     string
	passwordHash []byte
	secret       string
	ttl          time.Duration
}

// NewAuthService 创建登录服务
func NewAuthService(username, passwordHash, secret string, ttl time.Duration) AuthService {
	return &authService{
		username:     username,
		passwordHash: []byte(passwordHash),
		secret:       secret,
		ttl:          ttl,
	}
}

// Login 校验账号密码并签发管理员 Token
func (s *authService) Login(username, password string) (*Token, error) {
	// 1. 用户名常量时间比较；用户名错误也做一次 bcrypt，避免时序差异
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		logger.Log.Warn("admin login failed", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}

	// 2. 生成 Token
	token, expireAt, err := utils.GenerateToken(s.secret, s.username, utils.RoleAdmin, s.ttl)
	if err != nil {
		return nil, err
	}

	logger.Log.Info("admin logged in", zap.String("username", username))
	return &Token{AccessToken: token, ExpiresAt: expireAt}, nil
}
