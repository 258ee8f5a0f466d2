package xormimplement

import (
	"fmt"

	"github.com/kyanome/rag-backend/entity"
	"github.com/kyanome/rag-backend/model"
	"github.com/kyanome/rag-backend/repository"

	"xorm.io/builder"
)

type UserRepository struct {
	session *Session
}

func NewUserRepository(session *Session) repository.UserRepository {
	return &UserRepository{session: session}
}

func buildUsersQueryConditions(condition *model.GetUsersCondition) builder.Cond {
	var conds []builder.Cond

	if condition.Email != nil && *condition.Email != "" {
		conds = append(conds, builder.Eq{entity.UserFieldEmail: *condition.Email})
	}
	if condition.Role != nil && *condition.Role != "" {
		conds = append(conds, builder.Eq{entity.UserFieldRole: *condition.Role})
	}

	if len(conds) == 0 {
		return nil
	}
	return builder.And(conds...)
}

func (r *UserRepository) Insert(user *entity.User) error {
	if user == nil {
		return fmt.Errorf("user cannot be nil")
	}
	if user.ID == "" {
		return fmt.Errorf("user id is required")
	}

	_, err := r.session.Table(entity.TableNameUsers).Insert(user)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

func (r *UserRepository) Get(id string) (*entity.User, error) {
	if id == "" {
		return nil, fmt.Errorf("user id is required")
	}

	result := &entity.User{}
	ok, err := r.session.Table(entity.TableNameUsers).
		Where(builder.Eq{entity.UserFieldID: id}).
		Get(result)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !ok {
		return nil, nil
	}

	return result, nil
}

func (r *UserRepository) GetByEmail(email string) (*entity.User, error) {
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	result := &entity.User{}
	ok, err := r.session.Table(entity.TableNameUsers).
		Where(builder.Eq{entity.UserFieldEmail: email}).
		Get(result)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	if !ok {
		return nil, nil
	}

	return result, nil
}

func (r *UserRepository) List(condition *model.GetUsersCondition) ([]*entity.User, int64, error) {
	if condition == nil {
		return nil, 0, fmt.Errorf("get condition cannot be nil")
	}

	cond := buildUsersQueryConditions(condition)

	session := r.session.Table(entity.TableNameUsers)
	if cond != nil {
		session = session.Where(cond)
	}

	pagerOrder(session, condition, WithDefaultOrderField(entity.UserFieldCreatedAt))

	var results []*entity.User
	total, err := session.FindAndCount(&results)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	return results, total, nil
}

func (r *UserRepository) UpdateRole(id string, role string) error {
	if id == "" {
		return fmt.Errorf("user id is required")
	}
	if role == "" {
		return fmt.Errorf("role is required")
	}

	_, err := r.session.Table(entity.TableNameUsers).
		Where(builder.Eq{entity.UserFieldID: id}).
		Update(map[string]interface{}{
			entity.UserFieldRole: role,
		})
	if err != nil {
		return fmt.Errorf("failed to update user role: %w", err)
	}

	return nil
}

func (r *UserRepository) UpdatePassword(id string, passwordHash string) error {
	if id == "" {
		return fmt.Errorf("user id is required")
	}
	if passwordHash == "" {
		return fmt.Errorf("password hash is required")
	}

	_, err := r.session.Table(entity.TableNameUsers).
		Where(builder.Eq{entity.UserFieldID: id}).
		Update(map[string]interface{}{
			entity.UserFieldPasswordHash: passwordHash,
		})
	if err != nil {
		return fmt.Errorf("failed to update user password: %w", err)
	}

	return nil
}

func (r *UserRepository) Delete(id string) error {
	if id == "" {
		return fmt.Errorf("user id is required")
	}

	_, err := r.session.Table(entity.TableNameUsers).
		Where(builder.Eq{entity.UserFieldID: id}).
		Delete(&entity.User{})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return nil
}
