package controller

import (
	"net/http"

	"github.com/kyanome/rag-backend/model"
	"github.com/kyanome/rag-backend/service/factory"

	"github.com/gin-gonic/gin"
)

// Search 文档检索
// @Summary 关键词、向量或混合检索
// @Description search_type 支持 keyword / vector / hybrid，默认 hybrid
// @Tags Search
// @Accept json
// @Produce json
// @Param request body model.SearchRequest true "检索请求"
// @Success 200 {object} model.SearchResponse
// @Router /api/v1/search [post]
func Search(ctx *gin.Context) {
	var req model.SearchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, role := currentUser(ctx)
	resp, modelErr := factory.GetServiceFactory().NewSearchService().Search(ctx, userID, role, &req)
	if modelErr != nil {
		fail(ctx, modelErr)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}
