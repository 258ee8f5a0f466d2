package controller

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/kyanome/rag-backend/model"
	"github.com/kyanome/rag-backend/pkg/clients/httptool"
	"github.com/kyanome/rag-backend/service/factory"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

var (
	streamMessageStart = []byte("data: ")
	streamMessageEnd   = []byte("\n\n")
)

// RagQuery RAG 问答
// @Summary 基于文档检索的问答
// @Description 混合检索相关分块，拼装上下文后调用 LLM 生成带引用的答案
// @Tags Rag
// @Accept json
// @Produce json
// @Param request body model.RagQueryRequest true "问答请求"
// @Success 200 {object} model.RagQueryResponse
// @Router /api/v1/rag/query [post]
func RagQuery(ctx *gin.Context) {
	var req model.RagQueryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, role := currentUser(ctx)
	resp, modelErr := factory.GetServiceFactory().NewRagService().Query(ctx, userID, role, &req)
	if modelErr != nil {
		fail(ctx, modelErr)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// RagQueryStream 流式 RAG 问答
// @Summary 以 SSE 流式返回问答结果
// @Description 依次推送 sources、content、done 事件，出错时推送 error 事件
// @Tags Rag
// @Accept json
// @Produce text/event-stream
// @Param request body model.RagQueryRequest true "问答请求"
// @Router /api/v1/rag/query/stream [post]
func RagQueryStream(ctx *gin.Context) {
	var req model.RagQueryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if modelErr := req.Validate(); modelErr != nil {
		fail(ctx, modelErr)
		return
	}

	ctx.Writer.Header().Set(httptool.HeaderContentType, httptool.HeaderContentTypeStream)
	ctx.Writer.Header().Set(httptool.HeaderContentCache, httptool.HeaderContentCacheNo)
	ctx.Writer.Header().Set(httptool.HeaderContentConnection, httptool.HeaderContentKeepAlive)
	ctx.Writer.Header().Set(httptool.HeaderContentTransfer, httptool.HeaderContentChunked)
	ctx.Writer.Flush()

	onEvent := func(event *model.RagStreamEvent) error {
		var respMsg bytes.Buffer
		respMsg.Write(streamMessageStart)

		temp, err := json.Marshal(event)
		if err != nil {
			return err
		}
		respMsg.Write(temp)
		respMsg.Write(streamMessageEnd)

		if _, err = ctx.Writer.Write(respMsg.Bytes()); err != nil {
			return err
		}
		ctx.Writer.Flush()
		return nil
	}

	userID, role := currentUser(ctx)
	if modelErr := factory.GetServiceFactory().NewRagService().QueryStream(ctx, userID, role, &req, onEvent); modelErr != nil {
		// 响应头已发送，这里只能记录日志
		log.Errorf("RagQueryStream error: %v", modelErr)
	}
}
