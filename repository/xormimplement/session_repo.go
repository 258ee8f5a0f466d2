package xormimplement

import (
	"fmt"
	"time"

	"github.com/kyanome/rag-backend/entity"
	"github.com/kyanome/rag-backend/repository"

	"xorm.io/builder"
)

type SessionRepository struct {
	session *Session
}

func NewSessionRepository(session *Session) repository.SessionRepository {
	return &SessionRepository{session: session}
}

func (r *SessionRepository) Insert(data *entity.Session) error {
	if data == nil {
		return fmt.Errorf("session cannot be nil")
	}
	if data.ID == "" {
		return fmt.Errorf("session id is required")
	}

	_, err := r.session.Table(entity.TableNameSessions).Insert(data)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return nil
}

func (r *SessionRepository) Get(id string) (*entity.Session, error) {
	if id == "" {
		return nil, fmt.Errorf("session id is required")
	}

	result := &entity.Session{}
	ok, err := r.session.Table(entity.TableNameSessions).
		Where(builder.Eq{entity.SessionFieldID: id}).
		Get(result)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if !ok {
		return nil, nil
	}

	return result, nil
}

func (r *SessionRepository) Revoke(id string) error {
	if id == "" {
		return fmt.Errorf("session id is required")
	}

	_, err := r.session.Table(entity.TableNameSessions).
		Where(builder.Eq{entity.SessionFieldID: id}).
		Update(map[string]interface{}{
			entity.SessionFieldIsRevoked: true,
		})
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	return nil
}

func (r *SessionRepository) DeleteExpired(before time.Time) (int64, error) {
	affected, err := r.session.Table(entity.TableNameSessions).
		Where(builder.Lt{entity.SessionFieldExpiresAt: before}).
		Delete(&entity.Session{})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	return affected, nil
}

func (r *SessionRepository) RevokeAllByUser(userID string) (int64, error) {
	if userID == "" {
		return 0, fmt.Errorf("user_id is required")
	}

	affected, err := r.session.Table(entity.TableNameSessions).
		Where(builder.Eq{
			entity.SessionFieldUserID:    userID,
			entity.SessionFieldIsRevoked: false,
		}).
		Update(map[string]interface{}{
			entity.SessionFieldIsRevoked: true,
		})
	if err != nil {
		return 0, fmt.Errorf("failed to revoke sessions: %w", err)
	}

	return affected, nil
}
