package controller

import (
	"net/http"

	"github.com/kyanome/rag-backend/model"
	"github.com/kyanome/rag-backend/pkg/token"
	"github.com/kyanome/rag-backend/service/factory"

	"github.com/gin-gonic/gin"
)

// Register 用户注册
// @Summary 注册新用户
// @Description 创建用户账号，默认角色为 viewer
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body model.RegisterRequest true "注册请求"
// @Success 201 {object} model.UserResponse
// @Router /api/v1/auth/register [post]
func Register(ctx *gin.Context) {
	var req model.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, modelErr := factory.GetServiceFactory().NewAuthService().Register(ctx, &req)
	if modelErr != nil {
		fail(ctx, modelErr)
		return
	}

	ctx.JSON(http.StatusCreated, user)
}

// Login 用户登录
// @Summary 登录
// @Description 校验邮箱密码，返回 access token 和 refresh token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "登录请求"
// @Success 200 {object} model.TokenResponse
// @Router /api/v1/auth/login [post]
func Login(ctx *gin.Context) {
	var req model.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tokens, modelErr := factory.GetServiceFactory().NewAuthService().Login(ctx, &req, ctx.GetHeader("User-Agent"), ctx.ClientIP())
	if modelErr != nil {
		fail(ctx, modelErr)
		return
	}

	ctx.JSON(http.StatusOK, tokens)
}

// Refresh 刷新令牌
// @Summary 刷新 access token
// @Description 使用 refresh token 换取新的令牌对，旧会话被吊销
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body model.RefreshRequest true "刷新请求"
// @Success 200 {object} model.TokenResponse
// @Router /api/v1/auth/refresh [post]
func Refresh(ctx *gin.Context) {
	var req model.RefreshRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tokens, modelErr := factory.GetServiceFactory().NewAuthService().Refresh(ctx, &req)
	if modelErr != nil {
		fail(ctx, modelErr)
		return
	}

	ctx.JSON(http.StatusOK, tokens)
}

// Logout 退出登录
// @Summary 吊销当前会话
// @Description 根据 refresh token 吊销对应会话
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body model.RefreshRequest true "退出请求"
// @Success 200 {object} gin.H
// @Router /api/v1/auth/logout [post]
func Logout(ctx *gin.Context) {
	var req model.RefreshRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims, err := token.GetInstance().ParseRefreshToken(req.RefreshToken)
	if err != nil {
		fail(ctx, model.NewError(model.ErrorTokenInvalid, err))
		return
	}

	if modelErr := factory.GetServiceFactory().NewAuthService().Logout(ctx, claims.SessionID); modelErr != nil {
		fail(ctx, modelErr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// LogoutAll 退出所有会话
// @Summary 吊销当前用户全部会话
// @Tags Auth
// @Produce json
// @Success 200 {object} gin.H
// @Router /api/v1/auth/logout/all [post]
func LogoutAll(ctx *gin.Context) {
	userID, _ := currentUser(ctx)
	if modelErr := factory.GetServiceFactory().NewAuthService().LogoutAll(ctx, userID); modelErr != nil {
		fail(ctx, modelErr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "all sessions revoked"})
}

// ChangePassword 修改密码
// @Summary 修改当前用户密码
// @Description 修改成功后吊销所有会话，需要重新登录
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body model.ChangePasswordRequest true "修改密码请求"
// @Success 200 {object} gin.H
// @Router /api/v1/auth/password [put]
func ChangePassword(ctx *gin.Context) {
	var req model.ChangePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := currentUser(ctx)
	if modelErr := factory.GetServiceFactory().NewAuthService().ChangePassword(ctx, userID, &req); modelErr != nil {
		fail(ctx, modelErr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "password changed"})
}

// Me 当前用户信息
// @Summary 获取当前登录用户信息
// @Tags Auth
// @Produce json
// @Success 200 {object} model.UserResponse
// @Router /api/v1/auth/me [get]
func Me(ctx *gin.Context) {
	userID, _ := currentUser(ctx)
	user, modelErr := factory.GetServiceFactory().NewAuthService().Me(ctx, userID)
	if modelErr != nil {
		fail(ctx, modelErr)
		return
	}

	ctx.JSON(http.StatusOK, user)
}
