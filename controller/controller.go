package controller

import (
	"net/http"

	"github.com/kyanome/rag-backend/middleware"
	"github.com/kyanome/rag-backend/model"

	"github.com/gin-gonic/gin"
)

// httpStatusOf 业务错误码到 http 状态码的映射
func httpStatusOf(err *model.Error) int {
	switch err.Code {
	case model.ErrorUserEmailEmpty, model.ErrorUserPasswordEmpty, model.ErrorParams,
		model.ErrorEmptyId, model.ErrorPasswordTooShort, model.ErrorChunkConfigInvalid,
		model.ErrorFileTypeUnsupported, model.ErrorSearchQueryInvalid,
		model.ErrorSearchTypeInvalid, model.ErrorSearchLimitInvalid,
		model.ErrorSearchThreshold, model.ErrorRagQuestionInvalid:
		return http.StatusBadRequest
	case model.ErrorUserEmailOrPassword, model.ErrorTokenInvalid, model.ErrorSessionRevoked,
		model.ErrorUserForbidden:
		return http.StatusUnauthorized
	case model.ErrorNoPermission, model.ErrorDocumentNotOwner:
		return model.HttpStatusNoPermission
	case model.ErrorUserNotExist, model.ErrorDocumentNotFound:
		return http.StatusNotFound
	case model.ErrorUserEmailExist, model.ErrorDocumentConflict:
		return http.StatusConflict
	case model.ErrorEmbeddingUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// fail 按业务错误码返回错误响应
func fail(ctx *gin.Context, err *model.Error) {
	ctx.JSON(httpStatusOf(err), err)
}

// currentUser 从 gin 上下文取出鉴权后写入的用户信息
func currentUser(ctx *gin.Context) (userID, role string) {
	return ctx.GetString(middleware.ContextUserIDKey), ctx.GetString(middleware.ContextRoleKey)
}
