package db

// Session 管理员登录会话，ID 即 cookie 中的不透明令牌。
type Session struct {
	ID        string `gorm:"column:id;primaryKey"`
	ExpiresAt int64  `gorm:"column:expires_at"` // 毫秒时间戳
	CreatedAt string `gorm:"column:created_at"`
}

// TableName 固定表名。
func (Session) TableName() string {
	return "sessions"
}
