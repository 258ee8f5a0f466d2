package controller

import (
	"net/http"

	"github.com/kyanome/rag-backend/config"

	"github.com/gin-gonic/gin"
)

// Health 健康检查
// @Summary 健康检查
// @Description 返回服务名称和状态
// @Tags Health
// @Produce json
// @Success 200 {object} gin.H
// @Router /health [get]
func Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": config.ProjectName,
	})
}

// Ping 连通性探测
// @Summary 连通性探测
// @Tags Health
// @Produce plain
// @Success 200 {string} string "pong"
// @Router /ping [get]
func Ping(ctx *gin.Context) {
	ctx.String(http.StatusOK, "pong")
}
