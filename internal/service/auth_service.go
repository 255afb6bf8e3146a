package service

import (
	"errors"
	"time"

	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminNotConfigured = errors.New("admin credentials are not configured")
)

// AdminCredentials 唯一管理员的登录凭据，来自配置。
type AdminCredentials struct {
	Email        string
	PasswordHash string
}

// AuthService 校验管理员凭据并签发会话。
type AuthService struct {
	admin    AdminCredentials
	sessions *SessionService
	ttl      time.Duration
	logger   *zap.Logger
}

// NewAuthService 构造 AuthService，ttl 为 0 时使用默认的 30 天。
func NewAuthService(admin AdminCredentials, sessions *SessionService, ttl time.Duration, logger *zap.Logger) *AuthService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if admin.Email == "" || admin.PasswordHash == "" {
		logger.Warn("admin credentials not configured, login is disabled")
	}
	return &AuthService{admin: admin, sessions: sessions, ttl: ttl, logger: logger}
}

// TTL 返回会话有效期。
func (s *AuthService) TTL() time.Duration {
	return s.ttl
}

// CheckCredentials 邮箱需完全一致，密码与配置的哈希比对。
func (s *AuthService) CheckCredentials(email, password string) bool {
	if s.admin.Email == "" || s.admin.PasswordHash == "" {
		return false
	}
	if email != s.admin.Email {
		return false
	}
	return VerifyPassword(password, s.admin.PasswordHash)
}

// Login 校验凭据，成功后创建会话并返回令牌。
func (s *AuthService) Login(email, password string) (string, error) {
	if s.admin.Email == "" || s.admin.PasswordHash == "" {
		return "", ErrAdminNotConfigured
	}
	if !s.CheckCredentials(email, password) {
		s.logger.Info("admin login rejected", zap.String("email", email))
		return "", ErrInvalidCredentials
	}

	token, err := s.sessions.Create(s.ttl)
	if err != nil {
		return "", err
	}
	s.logger.Info("admin logged in")
	return token, nil
}

// Authenticated 判断令牌对应的会话是否有效。
func (s *AuthService) Authenticated(token string) bool {
	ok, err := s.sessions.Validate(token)
	if err != nil {
		s.logger.Error("validate session", zap.Error(err))
		return false
	}
	return ok
}

// Logout 删除会话。
func (s *AuthService) Logout(token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(token)
}
