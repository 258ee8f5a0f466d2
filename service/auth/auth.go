package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/kyanome/rag-backend/constant"
	"github.com/kyanome/rag-backend/entity"
	"github.com/kyanome/rag-backend/model"
	"github.com/kyanome/rag-backend/pkg/token"
	"github.com/kyanome/rag-backend/pkg/tools"
	"github.com/kyanome/rag-backend/repository"
	"github.com/kyanome/rag-backend/repository/factory"
	"github.com/kyanome/rag-backend/repository/interfaces"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	passwordMinLength = 8
	tokenTypeBearer   = "bearer"
)

type Service struct {
	repositoryFactory factory.Factory
	tokenService      *token.Service
}

func NewService(repositoryFactory factory.Factory) *Service {
	return &Service{
		repositoryFactory: repositoryFactory,
		tokenService:      token.GetInstance(),
	}
}

// Register 注册新用户，默认角色为 viewer
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.UserResponse, *model.Error) {
	if req.Email == "" {
		return nil, model.NewError(model.ErrorUserEmailEmpty, nil)
	}
	if req.Password == "" {
		return nil, model.NewError(model.ErrorUserPasswordEmpty, nil)
	}
	if len(req.Password) < passwordMinLength {
		return nil, model.NewError(model.ErrorPasswordTooShort, nil)
	}

	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	userRepo := newUserRepository(s.repositoryFactory, session)

	existing, err := userRepo.GetByEmail(req.Email)
	if err != nil {
		return nil, model.NewError(model.ErrorDB, err)
	}
	if existing != nil {
		return nil, model.NewError(model.ErrorUserEmailExist, nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, model.NewError(model.ErrorDB, err)
	}

	user := &entity.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         string(constant.UserRoleViewer),
		IsActive:     true,
	}

	if err = userRepo.Insert(user); err != nil {
		return nil, model.NewError(model.ErrorDB, err)
	}

	return toUserResponse(user), nil
}

// Login 校验密码并颁发 access/refresh 令牌，登录信息写入会话表
func (s *Service) Login(ctx context.Context, req *model.LoginRequest, userAgent, clientIP string) (*model.TokenResponse, *model.Error) {
	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	userRepo := newUserRepository(s.repositoryFactory, session)

	user, err := userRepo.GetByEmail(req.Email)
	if err != nil {
		return nil, model.NewError(model.ErrorDB, err)
	}
	if user == nil {
		return nil, model.NewError(model.ErrorUserEmailOrPassword, nil)
	}
	if !user.IsActive {
		return nil, model.NewError(model.ErrorUserForbidden, nil)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, model.NewError(model.ErrorUserEmailOrPassword, nil)
	}

	// 登录时顺手清理过期会话
	sessionRepo := newSessionRepository(s.repositoryFactory, session)
	if deleted, err := sessionRepo.DeleteExpired(time.Now()); err != nil {
		log.Warnf("delete expired sessions error: %v", err)
	} else if deleted > 0 {
		log.Infof("deleted %d expired sessions", deleted)
	}

	return s.issueTokens(session, user, userAgent, clientIP)
}

// Refresh 刷新令牌，旧会话吊销并轮换出新的 refresh token
func (s *Service) Refresh(ctx context.Context, req *model.RefreshRequest) (*model.TokenResponse, *model.Error) {
	claims, err := s.tokenService.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, model.NewError(model.ErrorTokenInvalid, err)
	}

	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	sessionRepo := newSessionRepository(s.repositoryFactory, session)
	userRepo := newUserRepository(s.repositoryFactory, session)

	stored, err := sessionRepo.Get(claims.SessionID)
	if err != nil {
		return nil, model.NewError(model.ErrorDB, err)
	}
	if stored == nil || stored.IsRevoked {
		return nil, model.NewError(model.ErrorSessionRevoked, nil)
	}
	if stored.RefreshToken != req.RefreshToken {
		return nil, model.NewError(model.ErrorTokenInvalid, fmt.Errorf("refresh token mismatch for session %s", stored.ID))
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, model.NewError(model.ErrorTokenInvalid, nil)
	}

	user, err := userRepo.Get(stored.UserID)
	if err != nil {
		return nil, model.NewError(model.ErrorDB, err)
	}
	if user == nil {
		return nil, model.NewError(model.ErrorUserNotExist, nil)
	}
	if !user.IsActive {
		return nil, model.NewError(model.ErrorUserForbidden, nil)
	}

	if err = sessionRepo.Revoke(stored.ID); err != nil {
		return nil, model.NewError(model.ErrorDB, err)
	}

	return s.issueTokens(session, user, stored.UserAgent, stored.ClientIP)
}

// Logout 吊销当前会话
func (s *Service) Logout(ctx context.Context, sessionID string) *model.Error {
	if sessionID == "" {
		return model.NewError(model.ErrorEmptyId, nil)
	}

	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	sessionRepo := newSessionRepository(s.repositoryFactory, session)
	if err := sessionRepo.Revoke(sessionID); err != nil {
		return model.NewError(model.ErrorDB, err)
	}

	return nil
}

// LogoutAll 吊销用户全部会话
func (s *Service) LogoutAll(ctx context.Context, userID string) *model.Error {
	if userID == "" {
		return model.NewError(model.ErrorEmptyId, nil)
	}

	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	sessionRepo := newSessionRepository(s.repositoryFactory, session)
	if _, err := sessionRepo.RevokeAllByUser(userID); err != nil {
		return model.NewError(model.ErrorDB, err)
	}

	return nil
}

// ChangePassword 修改密码并吊销所有会话，要求重新登录
func (s *Service) ChangePassword(ctx context.Context, userID string, req *model.ChangePasswordRequest) *model.Error {
	if len(req.NewPassword) < passwordMinLength {
		return model.NewError(model.ErrorPasswordTooShort, nil)
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

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return model.NewError(model.ErrorUserEmailOrPassword, nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return model.NewError(model.ErrorDB, err)
	}

	if err = userRepo.UpdatePassword(userID, string(hash)); err != nil {
		return model.NewError(model.ErrorDB, err)
	}

	if _, err = sessionRepo.RevokeAllByUser(userID); err != nil {
		return model.NewError(model.ErrorDB, err)
	}

	return nil
}

// Me 获取当前用户信息
func (s *Service) Me(ctx context.Context, userID string) (*model.UserResponse, *model.Error) {
	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	userRepo := newUserRepository(s.repositoryFactory, session)

	user, err := userRepo.Get(userID)
	if err != nil {
		return nil, model.NewError(model.ErrorDB, err)
	}
	if user == nil {
		return nil, model.NewError(model.ErrorUserNotExist, nil)
	}

	return toUserResponse(user), nil
}

func (s *Service) issueTokens(session interfaces.Session, user *entity.User, userAgent, clientIP string) (*model.TokenResponse, *model.Error) {
	sessionID := uuid.NewString()

	refreshToken, refreshExpiresAt, err := s.tokenService.CreateRefreshToken(user.ID, sessionID)
	if err != nil {
		return nil, model.NewError(model.ErrorMakeToken, err)
	}

	accessToken, accessExpiresAt, err := s.tokenService.CreateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, model.NewError(model.ErrorMakeToken, err)
	}

	sessionRepo := newSessionRepository(s.repositoryFactory, session)
	if err = sessionRepo.Insert(&entity.Session{
		ID:           sessionID,
		UserID:       user.ID,
		RefreshToken: refreshToken,
		UserAgent:    userAgent,
		ClientIP:     clientIP,
		IsRevoked:    false,
		ExpiresAt:    refreshExpiresAt,
	}); err != nil {
		return nil, model.NewError(model.ErrorDB, err)
	}

	return &model.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    tokenTypeBearer,
		ExpiresAt:    accessExpiresAt,
	}, nil
}

func toUserResponse(user *entity.User) *model.UserResponse {
	return &model.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}
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
