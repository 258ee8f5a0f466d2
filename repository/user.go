package repository

import (
	"github.com/kyanome/rag-backend/entity"
	"github.com/kyanome/rag-backend/model"
)

type UserRepository interface {
	Insert(user *entity.User) error
	Get(id string) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	List(condition *model.GetUsersCondition) ([]*entity.User, int64, error)
	UpdateRole(id string, role string) error
	UpdatePassword(id string, passwordHash string) error
	Delete(id string) error
}
