package entity

import "time"

const (
	TableNameSessions = "sessions"

	SessionFieldID           = "id"
	SessionFieldUserID       = "user_id"
	SessionFieldRefreshToken = "refresh_token"
	SessionFieldUserAgent    = "user_agent"
	SessionFieldClientIP     = "client_ip"
	SessionFieldIsRevoked    = "is_revoked"
	SessionFieldExpiresAt    = "expires_at"
	SessionFieldCreatedAt    = "created_at"
)

// Session 刷新令牌会话实体，登出通过 is_revoked 标记
type Session struct {
	ID           string    `xorm:"pk varchar(36) 'id'" json:"id"`
	UserID       string    `xorm:"varchar(36) index 'user_id'" json:"user_id"`
	RefreshToken string    `xorm:"text 'refresh_token'" json:"-"`
	UserAgent    string    `xorm:"varchar(512) 'user_agent'" json:"user_agent"`
	ClientIP     string    `xorm:"varchar(64) 'client_ip'" json:"client_ip"`
	IsRevoked    bool      `xorm:"bool 'is_revoked'" json:"is_revoked"`
	ExpiresAt    time.Time `xorm:"'expires_at'" json:"expires_at"`
	CreatedAt    time.Time `xorm:"created 'created_at'" json:"created_at"`
}

func (e *Session) TableName() string {
	return TableNameSessions
}
