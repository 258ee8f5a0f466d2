package controller

import (
	"net/http"

	"github.com/kyanome/rag-backend/model"
	"github.com/kyanome/rag-backend/pkg/str"
	"github.com/kyanome/rag-backend/service/factory"

	"github.com/gin-gonic/gin"
)

// ListUsers 用户列表
// @Summary 分页获取用户列表
// @Description 仅管理员可访问
// @Tags Admin
// @Produce json
// @Param limit query int false "每页条数，默认 20"
// @Param offset query int false "偏移量"
// @Success 200 {object} gin.H
// @Router /api/v1/admin/users [get]
func ListUsers(ctx *gin.Context) {
	limit, err := str.StringToInt(ctx.Query("limit"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	offset, err := str.StringToInt(ctx.Query("offset"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if limit <= 0 {
		limit = 20
	}

	users, total, modelErr := factory.GetServiceFactory().NewAdminService().ListUsers(ctx,
		&model.Pager{Limit: limit, Offset: offset}, nil)
	if modelErr != nil {
		fail(ctx, modelErr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"users":       users,
		"total_count": total,
	})
}

// UpdateUserRole 修改用户角色
// @Summary 修改指定用户的角色
// @Description 仅管理员可访问，角色支持 admin / editor / viewer
// @Tags Admin
// @Accept json
// @Produce json
// @Param user_id path string true "用户ID"
// @Param request body model.UpdateRoleRequest true "角色请求"
// @Success 200 {object} gin.H
// @Router /api/v1/admin/users/{user_id}/role [put]
func UpdateUserRole(ctx *gin.Context) {
	var req model.UpdateRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if modelErr := factory.GetServiceFactory().NewAdminService().UpdateUserRole(ctx, ctx.Param("user_id"), req.Role); modelErr != nil {
		fail(ctx, modelErr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "role updated"})
}

// DeleteUser 删除用户
// @Summary 删除指定用户并吊销其全部会话
// @Description 仅管理员可访问
// @Tags Admin
// @Produce json
// @Param user_id path string true "用户ID"
// @Success 200 {object} gin.H
// @Router /api/v1/admin/users/{user_id} [delete]
func DeleteUser(ctx *gin.Context) {
	if modelErr := factory.GetServiceFactory().NewAdminService().DeleteUser(ctx, ctx.Param("user_id")); modelErr != nil {
		fail(ctx, modelErr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}
