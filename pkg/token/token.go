package token

import (
	"fmt"
	"sync"
	"time"

	"github.com/kyanome/rag-backend/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	// TokenTypeAccess 访问令牌
	TokenTypeAccess = "access"
	// TokenTypeRefresh 刷新令牌
	TokenTypeRefresh = "refresh"

	// DefaultSecretPlaceholder 默认秘钥占位符，生产环境必须替换
	DefaultSecretPlaceholder = "your-secret-key-here-change-in-production"

	defaultAccessExpireMinutes = 15
	defaultRefreshExpireDays   = 30
)

var (
	instance *Service
	once     sync.Once
)

// UserClaims JWT 载荷
type UserClaims struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role,omitempty"`
	TokenType string `json:"token_type"`
	SessionID string `json:"session_id,omitempty"`
	jwt.RegisteredClaims
}

// Service JWT 签发与校验服务
type Service struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// GetInstance 获取 JWT 服务单例
func GetInstance() *Service {
	once.Do(func() {
		cfg := config.GetInstance()

		secret := cfg.GetStringOrDefault(config.JwtSecretKey, DefaultSecretPlaceholder)
		if secret == DefaultSecretPlaceholder {
			log.Warn("Using default JWT secret key. Please set jwt.secret_key in production!")
		} else if len(secret) < 32 {
			panic("jwt secret key must be at least 32 characters long")
		}

		instance = &Service{
			secret:     []byte(secret),
			accessTTL:  time.Duration(cfg.GetIntOrDefault(config.JwtAccessTokenExpireMin, defaultAccessExpireMinutes)) * time.Minute,
			refreshTTL: time.Duration(cfg.GetIntOrDefault(config.JwtRefreshTokenExpireDays, defaultRefreshExpireDays)) * 24 * time.Hour,
		}
	})
	return instance
}

// NewService 按给定参数创建 JWT 服务（测试用）
func NewService(secret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// CreateAccessToken 签发访问令牌
func (s *Service) CreateAccessToken(userID, role string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.accessTTL)

	claims := &UserClaims{
		UserID:    userID,
		Role:      role,
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, expiresAt, nil
}

// CreateRefreshToken 签发刷新令牌，绑定会话 ID
func (s *Service) CreateRefreshToken(userID, sessionID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.refreshTTL)

	claims := &UserClaims{
		UserID:    userID,
		TokenType: TokenTypeRefresh,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return signed, expiresAt, nil
}

// parse 解析并校验签名与过期时间
func (s *Service) parse(tokenString string) (*UserClaims, error) {
	claims := &UserClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// ParseAccessToken 校验访问令牌
func (s *Service) ParseAccessToken(tokenString string) (*UserClaims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeAccess {
		return nil, fmt.Errorf("token is not an access token")
	}
	return claims, nil
}

// ParseRefreshToken 校验刷新令牌
func (s *Service) ParseRefreshToken(tokenString string) (*UserClaims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeRefresh {
		return nil, fmt.Errorf("token is not a refresh token")
	}
	return claims, nil
}
