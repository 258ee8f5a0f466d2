package middleware

import (
	"net/http"
	"strings"

	"github.com/kyanome/rag-backend/constant"
	"github.com/kyanome/rag-backend/model"
	"github.com/kyanome/rag-backend/pkg/token"

	"github.com/gin-gonic/gin"
)

const (
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "

	ContextUserIDKey = "user_id"
	ContextRoleKey   = "role"
)

// Auth 校验 access token，通过后把 user_id 和 role 写入 gin 上下文
func Auth(ctx *gin.Context) {
	header := ctx.GetHeader(AuthorizationHeader)
	if header == "" || !strings.HasPrefix(header, BearerPrefix) {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, model.NewError(model.ErrorTokenInvalid, nil))
		return
	}

	claims, err := token.GetInstance().ParseAccessToken(strings.TrimPrefix(header, BearerPrefix))
	if err != nil {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, model.NewError(model.ErrorTokenInvalid, err))
		return
	}

	ctx.Set(ContextUserIDKey, claims.UserID)
	ctx.Set(ContextRoleKey, claims.Role)
	ctx.Next()
}

// RequireAdmin 仅管理员可访问，需要在 Auth 之后使用
func RequireAdmin(ctx *gin.Context) {
	role := ctx.GetString(ContextRoleKey)
	if constant.UserRole(role) != constant.UserRoleAdmin {
		ctx.AbortWithStatusJSON(model.HttpStatusNoPermission, model.NewError(model.ErrorNoPermission, nil))
		return
	}
	ctx.Next()
}
