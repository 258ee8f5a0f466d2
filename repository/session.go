package repository

import (
	"time"

	"github.com/kyanome/rag-backend/entity"
)

type SessionRepository interface {
	Insert(session *entity.Session) error
	Get(id string) (*entity.Session, error)
	Revoke(id string) error
	RevokeAllByUser(userID string) (int64, error)
	// DeleteExpired 清理指定时间之前过期的会话
	DeleteExpired(before time.Time) (int64, error)
}
