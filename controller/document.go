package controller

import (
	"net/http"
	"strings"

	"github.com/kyanome/rag-backend/model"
	"github.com/kyanome/rag-backend/pkg/str"
	"github.com/kyanome/rag-backend/pkg/tools"
	"github.com/kyanome/rag-backend/service/factory"

	"github.com/gin-gonic/gin"
)

// CreateDocument 创建文档
// @Summary 创建文档
// @Description 支持直接提交内容，或提交文件路径由服务端提取文本
// @Tags Document
// @Accept json
// @Produce json
// @Param request body model.CreateDocumentRequest true "创建文档请求"
// @Success 201 {object} model.DocumentResponse
// @Router /api/v1/documents [post]
func CreateDocument(ctx *gin.Context) {
	var req model.CreateDocumentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, role := currentUser(ctx)
	doc, modelErr := factory.GetServiceFactory().NewDocumentService().Create(ctx, userID, role, &req)
	if modelErr != nil {
		fail(ctx, modelErr)
		return
	}

	ctx.JSON(http.StatusCreated, doc)
}

// UploadDocument 上传文档文件
// @Summary 上传文档文件
// @Description multipart 上传，服务端保存文件并提取文本创建文档
// @Tags Document
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "文档文件"
// @Param title formData string false "标题，默认取文件名"
// @Success 201 {object} model.DocumentResponse
// @Router /api/v1/documents/upload [post]
func UploadDocument(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer tools.ErrorWithPrintContext(src.Close, "close uploaded file")

	userID, role := currentUser(ctx)
	doc, modelErr := factory.GetServiceFactory().NewDocumentService().Upload(ctx, userID, role,
		ctx.PostForm("title"), fileHeader.Filename, src)
	if modelErr != nil {
		fail(ctx, modelErr)
		return
	}

	ctx.JSON(http.StatusCreated, doc)
}

// ListDocuments 文档列表
// @Summary 分页获取文档列表
// @Description 普通用户只能看到自己的文档，管理员可以看到全部
// @Tags Document
// @Produce json
// @Param limit query int false "每页条数，默认 20"
// @Param offset query int false "偏移量"
// @Param title query string false "标题模糊过滤（不区分大小写）"
// @Param category query string false "按元数据 category 过滤"
// @Param tags query string false "按元数据 tags 过滤，逗号分隔，要求全部包含"
// @Param order_by query string false "排序字段"
// @Param order_asc query bool false "是否升序"
// @Success 200 {object} model.ListDocumentsResponse
// @Router /api/v1/documents [get]
func ListDocuments(ctx *gin.Context) {
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

	var order *model.Order
	if orderBy := ctx.Query("order_by"); orderBy != "" {
		order = &model.Order{
			OrderBy:  orderBy,
			OrderAsc: ctx.Query("order_asc") == "true",
		}
	}

	filter := &model.DocumentListFilter{
		Title:    ctx.Query("title"),
		Category: ctx.Query("category"),
	}
	if tags := ctx.Query("tags"); tags != "" {
		filter.Tags = strings.Split(tags, ",")
	}

	userID, role := currentUser(ctx)
	resp, modelErr := factory.GetServiceFactory().NewDocumentService().List(ctx, userID, role, filter,
		&model.Pager{Limit: limit, Offset: offset}, order)
	if modelErr != nil {
		fail(ctx, modelErr)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// GetDocument 获取文档详情
// @Summary 获取文档详情
// @Tags Document
// @Produce json
// @Param document_id path string true "文档ID"
// @Success 200 {object} model.DocumentResponse
// @Router /api/v1/documents/{document_id} [get]
func GetDocument(ctx *gin.Context) {
	userID, role := currentUser(ctx)
	doc, modelErr := factory.GetServiceFactory().NewDocumentService().Get(ctx, userID, role, ctx.Param("document_id"))
	if modelErr != nil {
		fail(ctx, modelErr)
		return
	}

	ctx.JSON(http.StatusOK, doc)
}

// UpdateDocument 更新文档
// @Summary 更新文档
// @Description 带版本号乐观锁，版本不匹配返回 409
// @Tags Document
// @Accept json
// @Produce json
// @Param document_id path string true "文档ID"
// @Param request body model.UpdateDocumentRequest true "更新文档请求"
// @Success 200 {object} model.DocumentResponse
// @Router /api/v1/documents/{document_id} [put]
func UpdateDocument(ctx *gin.Context) {
	var req model.UpdateDocumentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, role := currentUser(ctx)
	doc, modelErr := factory.GetServiceFactory().NewDocumentService().Update(ctx, userID, role, ctx.Param("document_id"), &req)
	if modelErr != nil {
		fail(ctx, modelErr)
		return
	}

	ctx.JSON(http.StatusOK, doc)
}

// DeleteDocument 删除文档
// @Summary 删除文档及其分块
// @Tags Document
// @Produce json
// @Param document_id path string true "文档ID"
// @Success 200 {object} gin.H
// @Router /api/v1/documents/{document_id} [delete]
func DeleteDocument(ctx *gin.Context) {
	userID, role := currentUser(ctx)
	if modelErr := factory.GetServiceFactory().NewDocumentService().Delete(ctx, userID, role, ctx.Param("document_id")); modelErr != nil {
		fail(ctx, modelErr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "document deleted"})
}

// ChunkDocument 文档分块
// @Summary 对文档内容执行分块
// @Description 重新分块会先删除旧分块，embedding 需要重新生成
// @Tags Document
// @Accept json
// @Produce json
// @Param document_id path string true "文档ID"
// @Param request body model.ChunkDocumentRequest true "分块参数"
// @Success 200 {object} model.ChunkDocumentResponse
// @Router /api/v1/documents/{document_id}/chunks [post]
func ChunkDocument(ctx *gin.Context) {
	var req model.ChunkDocumentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, role := currentUser(ctx)
	resp, modelErr := factory.GetServiceFactory().NewDocumentService().Chunk(ctx, userID, role, ctx.Param("document_id"), &req)
	if modelErr != nil {
		fail(ctx, modelErr)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// GenerateEmbeddings 生成向量
// @Summary 为文档缺失向量的分块生成 embedding
// @Tags Document
// @Produce json
// @Param document_id path string true "文档ID"
// @Success 200 {object} model.GenerateEmbeddingsResponse
// @Router /api/v1/documents/{document_id}/embeddings [post]
func GenerateEmbeddings(ctx *gin.Context) {
	userID, role := currentUser(ctx)
	resp, modelErr := factory.GetServiceFactory().NewDocumentService().GenerateEmbeddings(ctx, userID, role, ctx.Param("document_id"))
	if modelErr != nil {
		fail(ctx, modelErr)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}
