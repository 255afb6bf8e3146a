package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/folio/internal/db"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultSessionTTL 管理员会话的默认有效期。
const DefaultSessionTTL = 30 * 24 * time.Hour

// SessionService 管理登录会话，过期会话在校验时惰性删除。
type SessionService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSessionService 构造 SessionService。
func NewSessionService(gdb *gorm.DB) *SessionService {
	return &SessionService{db: gdb, now: time.Now}
}

// WithClock 替换时间来源，主要用于测试。
func (s *SessionService) WithClock(now func() time.Time) *SessionService {
	s.now = now
	return s
}

// Create 生成随机令牌并持久化，返回令牌。
func (s *SessionService) Create(ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	session := db.Session{
		ID:        uuid.NewString(),
		ExpiresAt: s.now().Add(ttl).UnixMilli(),
	}
	if err := s.db.Omit("created_at").Create(&session).Error; err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return session.ID, nil
}

// Validate 判断令牌是否有效；发现已过期时顺带删除该会话。不会延长有效期。
func (s *SessionService) Validate(token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	var session db.Session
	if err := s.db.Where("id = ?", token).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load session: %w", err)
	}

	if session.ExpiresAt < s.now().UnixMilli() {
		if err := s.Delete(token); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

// Delete 删除会话，令牌不存在时同样成功。
func (s *SessionService) Delete(token string) error {
	if err := s.db.Where("id = ?", token).Delete(&db.Session{}).Error; err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Cleanup 批量清理所有已过期的会话，返回删除数量。
func (s *SessionService) Cleanup() (int64, error) {
	result := s.db.Where("expires_at < ?", s.now().UnixMilli()).Delete(&db.Session{})
	if result.Error != nil {
		return 0, fmt.Errorf("cleanup sessions: %w", result.Error)
	}
	return result.RowsAffected, nil
}
