package admin

import (
	"context"

	"github.com/kyanome/rag-backend/constant"
	"github.com/kyanome/rag-backend/model"
	"github.com/kyanome/rag-backend/pkg/tools"
	"github.com/kyanome/rag-backend/repository"
	"github.com/kyanome/rag-backend/repository/factory"
	"github.com/kyanome/rag-backend/repository/interfaces"
)

type Service struct {
	repositoryFactory factory.Factory
}

func NewService(repositoryFactory factory.Factory) *Service {
	return &Service{repositoryFactory: repositoryFactory}
}

// ListUsers 分页查询用户列表
func (s *Service) ListUsers(ctx context.Context, pager *model.Pager, order *model.Order) ([]*model.UserResponse, int64, *model.Error) {
	if pager == nil || pager.Limit <= 0 {
		pager = &model.Pager{Limit: constant.DefaultPageLimit}
	}

	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	userRepo := newUserRepository(s.repositoryFactory, session)
	users, total, err := userRepo.List(&model.GetUsersCondition{
		Pager: pager,
		Order: order,
	})
	if err != nil {
		return nil, 0, model.NewError(model.ErrorDB, err)
	}

	responses := make([]*model.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, &model.UserResponse{
			ID:        user.ID,
			Email:     user.Email,
			FullName:  user.FullName,
			Role:      user.Role,
			IsActive:  user.IsActive,
			CreatedAt: user.CreatedAt,
		})
	}

	return responses, total, nil
}

// UpdateUserRole 修改用户角色
func (s *Service) UpdateUserRole(ctx context.Context, userID, role string) *model.Error {
	if userID == "" {
		return model.NewError(model.ErrorEmptyId, nil)
	}
	if !constant.UserRole(role).IsValid() {
		return model.NewError(model.ErrorParams, nil)
	}

	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	userRepo := newUserRepository(s.repositoryFactory, session)

	user, err := userRepo.Get(userID)
	if err != nil {
		return model.NewError(model.ErrorDB, err)
	}
	if user == nil {
		return model.NewError(model.ErrorUserNotExist, nil)
	}

	if err = userRepo.UpdateRole(userID, role); err != nil {
		return model.NewError(model.ErrorDB, err)
	}

	return nil
}

// DeleteUser 删除用户并吊销其全部会话
func (s *Service) DeleteUser(ctx context.Context, userID string) *model.Error {
	if userID == "" {
		return model.NewError(model.ErrorEmptyId, nil)
	}

	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	userRepo := newUserRepository(s.repositoryFactory, session)
	sessionRepo := newSessionRepository(s.repositoryFactory, session)

	user, err := userRepo.Get(userID)
	if err != nil {
		return model.NewError(model.ErrorDB, err)
	}
	if user == nil {
		return model.NewError(model.ErrorUserNotExist, nil)
	}

	if err = session.Begin(); err != nil {
		return model.NewError(model.ErrorDB, err)
	}

	if _, err = sessionRepo.RevokeAllByUser(userID); err != nil {
		_ = session.Rollback()
		return model.NewError(model.ErrorDB, err)
	}

	if err = userRepo.Delete(userID); err != nil {
		_ = session.Rollback()
		return model.NewError(model.ErrorDB, err)
	}

	if err = session.Commit(); err != nil {
		return model.NewError(model.ErrorDB, err)
	}

	return nil
}

func newUserRepository(repoFactory factory.Factory, session interfaces.Session) repository.UserRepository {
	repo, err := repoFactory.NewUserRepository(session)
	if err != nil {
		panic("failed to create user repository: " + err.Error())
	}
	return repo
}

func newSessionRepository(repoFactory factory.Factory, session interfaces.Session) repository.SessionRepository {
	repo, err := repoFactory.NewSessionRepository(session)
	if err != nil {
		panic("failed to create session repository: " + err.Error())
	}
	return repo
}
