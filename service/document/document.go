package document

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kyanome/rag-backend/config"
	"github.com/kyanome/rag-backend/constant"
	"github.com/kyanome/rag-backend/entity"
	"github.com/kyanome/rag-backend/model"
	"github.com/kyanome/rag-backend/pkg/chunker"
	"github.com/kyanome/rag-backend/pkg/clients/embedding"
	"github.com/kyanome/rag-backend/pkg/extractor"
	"github.com/kyanome/rag-backend/pkg/tools"
	"github.com/kyanome/rag-backend/repository"
	"github.com/kyanome/rag-backend/repository/factory"
	"github.com/kyanome/rag-backend/repository/interfaces"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type Service struct {
	repositoryFactory factory.Factory
	extractor         *extractor.CompositeExtractor
}

func NewService(repositoryFactory factory.Factory) *Service {
	return &Service{
		repositoryFactory: repositoryFactory,
		extractor:         extractor.NewCompositeExtractor(),
	}
}

// Create 创建文档，content 为空且带 file_path 时从文件提取文本
func (s *Service) Create(ctx context.Context, userID, role string, req *model.CreateDocumentRequest) (*model.DocumentResponse, *model.Error) {
	if !constant.UserRole(role).CanWriteDocuments() {
		return nil, model.NewError(model.ErrorNoPermission, nil)
	}

	content := req.Content
	if content == "" && req.FilePath != "" {
		if !s.extractor.CanExtract(req.FilePath) {
			return nil, model.NewError(model.ErrorFileTypeUnsupported, nil)
		}
		extracted, err := s.extractor.ExtractText(req.FilePath)
		if err != nil {
			return nil, model.NewError(model.ErrorExtractFailed, err)
		}
		content = extracted
	}

	metadata, err := marshalMetadata(req.Metadata)
	if err != nil {
		return nil, model.NewError(model.ErrorParams, err)
	}

	doc := &entity.Document{
		ID:       uuid.NewString(),
		OwnerID:  userID,
		Title:    req.Title,
		FilePath: req.FilePath,
		Content:  content,
		Metadata: metadata,
		Version:  1,
	}

	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	docRepo := newDocumentRepository(s.repositoryFactory, session)
	if err = docRepo.Insert(doc); err != nil {
		return nil, model.NewError(model.ErrorDB, err)
	}

	return s.toResponse(session, doc, true), nil
}

// Upload 保存上传文件到存储目录，提取文本后创建文档
func (s *Service) Upload(ctx context.Context, userID, role, title, fileName string, src io.Reader) (*model.DocumentResponse, *model.Error) {
	if !constant.UserRole(role).CanWriteDocuments() {
		return nil, model.NewError(model.ErrorNoPermission, nil)
	}
	if !s.extractor.CanExtract(fileName) {
		return nil, model.NewError(model.ErrorFileTypeUnsupported, nil)
	}

	storageDir := config.GetInstance().GetStringOrDefault(config.AppFileStoragePath, "./storage")
	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, model.NewError(model.ErrorFileSaveFailed, err)
	}

	// uuid 前缀避免同名覆盖
	storedPath := filepath.Join(storageDir, uuid.NewString()+"_"+filepath.Base(fileName))
	dst, err := os.Create(storedPath)
	if err != nil {
		return nil, model.NewError(model.ErrorFileSaveFailed, err)
	}
	if _, err = io.Copy(dst, src); err != nil {
		tools.ErrorWithPrintContext(dst.Close, "close uploaded file")
		return nil, model.NewError(model.ErrorFileSaveFailed, err)
	}
	if err = dst.Close(); err != nil {
		return nil, model.NewError(model.ErrorFileSaveFailed, err)
	}

	if title == "" {
		title = fileName
	}

	return s.Create(ctx, userID, role, &model.CreateDocumentRequest{
		Title:    title,
		FilePath: storedPath,
		Metadata: map[string]interface{}{"file_name": fileName},
	})
}

// Get 查询单个文档，非 admin 只能查看自己的文档
func (s *Service) Get(ctx context.Context, userID, role, id string) (*model.DocumentResponse, *model.Error) {
	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	doc, modelErr := s.getOwned(session, userID, role, id)
	if modelErr != nil {
		return nil, modelErr
	}

	return s.toResponse(session, doc, true), nil
}

// List 分页查询文档列表，列表项不返回正文，title 非空时做模糊过滤
func (s *Service) List(ctx context.Context, userID, role string, filter *model.DocumentListFilter, pager *model.Pager, order *model.Order) (*model.ListDocumentsResponse, *model.Error) {
	if pager == nil || pager.Limit <= 0 {
		pager = &model.Pager{Limit: constant.DefaultPageLimit}
	}

	condition := &model.GetDocumentsCondition{
		Pager: pager,
		Order: order,
	}
	if filter != nil {
		if filter.Title != "" {
			condition.Title = &filter.Title
		}
		if filter.Category != "" {
			condition.Category = &filter.Category
		}
		condition.Tags = filter.Tags
	}
	if constant.UserRole(role) != constant.UserRoleAdmin {
		condition.OwnerID = &userID
	}

	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	docRepo := newDocumentRepository(s.repositoryFactory, session)
	docs, total, err := docRepo.List(condition)
	if err != nil {
		return nil, model.NewError(model.ErrorDB, err)
	}

	responses := make([]*model.DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp := s.toResponse(session, doc, false)
		resp.Content = ""
		responses = append(responses, resp)
	}

	return &model.ListDocumentsResponse{
		Documents:  responses,
		TotalCount: total,
		Limit:      pager.Limit,
		Offset:     pager.Offset,
	}, nil
}

// Update 更新文档，乐观锁冲突时返回 conflict 错误；正文变更会清掉已有分块
func (s *Service) Update(ctx context.Context, userID, role, id string, req *model.UpdateDocumentRequest) (*model.DocumentResponse, *model.Error) {
	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	doc, modelErr := s.getOwned(session, userID, role, id)
	if modelErr != nil {
		return nil, modelErr
	}
	if !constant.UserRole(role).CanWriteDocuments() {
		return nil, model.NewError(model.ErrorNoPermission, nil)
	}

	version := req.Version
	if version == 0 {
		version = doc.Version
	}

	condition := &model.UpdateDocumentCondition{
		Title:   req.Title,
		Content: req.Content,
	}
	if req.Metadata != nil {
		metadata, err := marshalMetadata(req.Metadata)
		if err != nil {
			return nil, model.NewError(model.ErrorParams, err)
		}
		condition.Metadata = &metadata
	}

	docRepo := newDocumentRepository(s.repositoryFactory, session)
	affected, err := docRepo.Update(id, version, condition)
	if err != nil {
		return nil, model.NewError(model.ErrorDB, err)
	}
	if affected == 0 {
		return nil, model.NewError(model.ErrorDocumentConflict, nil)
	}

	// 正文变了，旧分块和向量全部作废
	if req.Content != nil && *req.Content != doc.Content {
		chunkRepo := newDocumentChunkRepository(s.repositoryFactory, session)
		deleted, err := chunkRepo.DeleteByDocumentID(id)
		if err != nil {
			return nil, model.NewError(model.ErrorDB, err)
		}
		log.Infof("document %s content changed, dropped %d stale chunks", id, deleted)
	}

	updated, err := docRepo.Get(id)
	if err != nil {
		return nil, model.NewError(model.ErrorDB, err)
	}

	return s.toResponse(session, updated, true), nil
}

// Delete 删除文档及其分块
func (s *Service) Delete(ctx context.Context, userID, role, id string) *model.Error {
	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	if _, modelErr := s.getOwned(session, userID, role, id); modelErr != nil {
		return modelErr
	}
	if !constant.UserRole(role).CanWriteDocuments() {
		return model.NewError(model.ErrorNoPermission, nil)
	}

	if err := session.Begin(); err != nil {
		return model.NewError(model.ErrorDB, err)
	}

	chunkRepo := newDocumentChunkRepository(s.repositoryFactory, session)
	if _, err := chunkRepo.DeleteByDocumentID(id); err != nil {
		_ = session.Rollback()
		return model.NewError(model.ErrorDB, err)
	}

	docRepo := newDocumentRepository(s.repositoryFactory, session)
	if err := docRepo.Delete(id); err != nil {
		_ = session.Rollback()
		return model.NewError(model.ErrorDB, err)
	}

	if err := session.Commit(); err != nil {
		return model.NewError(model.ErrorDB, err)
	}

	return nil
}

// Chunk 对文档正文分块，参数优先级：请求 > 配置 > 默认值，重跑时先清掉旧分块
func (s *Service) Chunk(ctx context.Context, userID, role, id string, req *model.ChunkDocumentRequest) (*model.ChunkDocumentResponse, *model.Error) {
	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	doc, modelErr := s.getOwned(session, userID, role, id)
	if modelErr != nil {
		return nil, modelErr
	}
	if !constant.UserRole(role).CanWriteDocuments() {
		return nil, model.NewError(model.ErrorNoPermission, nil)
	}

	chunkConfig := resolveChunkConfig(req)
	if err := chunker.ValidateConfig(chunkConfig.MaxSize, chunkConfig.Overlap, chunkConfig.MinSize); err != nil {
		return nil, model.NewError(model.ErrorChunkConfigInvalid, err)
	}

	chunks := chunker.NewChunker(chunkConfig).Chunk(doc.Content, chunkConfig.MaxSize, chunkConfig.Overlap)

	entities, modelErr := buildChunkEntities(doc.ID, chunks, chunkConfig.Overlap)
	if modelErr != nil {
		return nil, modelErr
	}

	if err := session.Begin(); err != nil {
		return nil, model.NewError(model.ErrorDB, err)
	}

	chunkRepo := newDocumentChunkRepository(s.repositoryFactory, session)
	if _, err := chunkRepo.DeleteByDocumentID(doc.ID); err != nil {
		_ = session.Rollback()
		return nil, model.NewError(model.ErrorDB, err)
	}
	if len(entities) > 0 {
		if err := chunkRepo.Insert(entities); err != nil {
			_ = session.Rollback()
			return nil, model.NewError(model.ErrorDB, err)
		}
	}

	if err := session.Commit(); err != nil {
		return nil, model.NewError(model.ErrorDB, err)
	}

	return &model.ChunkDocumentResponse{
		DocumentID:    doc.ID,
		ChunksCreated: len(entities),
		Strategy:      chunkConfig.Strategy,
		ChunkSize:     chunkConfig.MaxSize,
		ChunkOverlap:  chunkConfig.Overlap,
	}, nil
}

// buildChunkEntities 把分块结果转换成待插入的实体，空白块不入库
func buildChunkEntities(documentID string, chunks []chunker.Chunk, overlap int) ([]*entity.DocumentChunk, *model.Error) {
	entities := make([]*entity.DocumentChunk, 0, len(chunks))
	for i, c := range chunks {
		if strings.TrimSpace(c.Text) == "" {
			continue
		}
		metadata := entity.ChunkMetadata{
			ChunkIndex:    c.ChunkIdx,
			StartPosition: c.StartIdx,
			EndPosition:   c.EndIdx,
			TotalChunks:   c.TotalChunks,
		}
		if i > 0 {
			metadata.OverlapWithPrevious = overlap
		}
		if i < len(chunks)-1 {
			metadata.OverlapWithNext = overlap
		}

		metadataJSON, err := json.Marshal(metadata)
		if err != nil {
			return nil, model.NewError(model.ErrorDB, err)
		}

		entities = append(entities, &entity.DocumentChunk{
			ID:         uuid.NewString(),
			DocumentID: documentID,
			Content:    c.Text,
			Metadata:   string(metadataJSON),
		})
	}
	return entities, nil
}

// GenerateEmbeddings 为还没有向量的分块批量生成 embedding
func (s *Service) GenerateEmbeddings(ctx context.Context, userID, role, id string) (*model.GenerateEmbeddingsResponse, *model.Error) {
	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	doc, modelErr := s.getOwned(session, userID, role, id)
	if modelErr != nil {
		return nil, modelErr
	}
	if !constant.UserRole(role).CanWriteDocuments() {
		return nil, model.NewError(model.ErrorNoPermission, nil)
	}

	chunkRepo := newDocumentChunkRepository(s.repositoryFactory, session)
	chunks, _, err := chunkRepo.List(&model.GetChunksCondition{
		DocumentID:           &doc.ID,
		OnlyMissingEmbedding: true,
	})
	if err != nil {
		return nil, model.NewError(model.ErrorDB, err)
	}

	startTime := time.Now()
	resp := &model.GenerateEmbeddingsResponse{
		DocumentID:      doc.ID,
		ChunksProcessed: len(chunks),
	}

	if len(chunks) == 0 {
		return resp, nil
	}

	embeddingClient, err := embedding.GetInstance()
	if err != nil {
		return nil, model.NewError(model.ErrorEmbeddingUnavailable, err)
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	embeddings, err := embeddingClient.GetTextEmbeddingBatch(ctx, texts)
	if err != nil {
		return nil, model.NewError(model.ErrorEmbeddingUnavailable, err)
	}

	for i, chunk := range chunks {
		if i >= len(embeddings) || embeddings[i] == nil {
			continue
		}
		if err = chunkRepo.UpdateEmbedding(chunk.ID, embedding.VectorToString(embeddings[i])); err != nil {
			return nil, model.NewError(model.ErrorDB, err)
		}
		resp.EmbeddingsCreated++
		resp.EmbeddingDimension = len(embeddings[i])
	}

	resp.ProcessingTimeMs = time.Since(startTime).Milliseconds()
	return resp, nil
}

// getOwned 读取文档并做归属校验
func (s *Service) getOwned(session interfaces.Session, userID, role, id string) (*entity.Document, *model.Error) {
	if id == "" {
		return nil, model.NewError(model.ErrorEmptyId, nil)
	}

	docRepo := newDocumentRepository(s.repositoryFactory, session)
	doc, err := docRepo.Get(id)
	if err != nil {
		return nil, model.NewError(model.ErrorDB, err)
	}
	if doc == nil {
		return nil, model.NewError(model.ErrorDocumentNotFound, nil)
	}

	if constant.UserRole(role) != constant.UserRoleAdmin && doc.OwnerID != userID {
		return nil, model.NewError(model.ErrorDocumentNotOwner, nil)
	}

	return doc, nil
}

func (s *Service) toResponse(session interfaces.Session, doc *entity.Document, withChunkCount bool) *model.DocumentResponse {
	resp := &model.DocumentResponse{
		ID:        doc.ID,
		OwnerID:   doc.OwnerID,
		Title:     doc.Title,
		FilePath:  doc.FilePath,
		Content:   doc.Content,
		Metadata:  unmarshalMetadata(doc.Metadata),
		Version:   doc.Version,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}

	if withChunkCount {
		chunkRepo := newDocumentChunkRepository(s.repositoryFactory, session)
		count, err := chunkRepo.Count(&model.GetChunksCondition{DocumentID: &doc.ID})
		if err != nil {
			log.Warnf("count chunks for document %s error: %v", doc.ID, err)
		} else {
			resp.ChunkCount = int(count)
		}
	}

	return resp
}

// resolveChunkConfig 合并分块参数：请求 > 配置 > 默认值
func resolveChunkConfig(req *model.ChunkDocumentRequest) chunker.ChunkConfig {
	cfg := config.GetInstance()
	chunkConfig := chunker.DefaultChunkConfig()

	chunkConfig.MaxSize = cfg.GetIntOrDefault(config.ChunkMaxSize, chunkConfig.MaxSize)
	chunkConfig.Overlap = cfg.GetIntOrDefault(config.ChunkOverlap, chunkConfig.Overlap)
	chunkConfig.MinSize = cfg.GetIntOrDefault(config.ChunkMinSize, chunkConfig.MinSize)
	chunkConfig.Strategy = cfg.GetStringOrDefault(config.ChunkStrategy, chunkConfig.Strategy)

	if req != nil {
		if req.ChunkSize != nil {
			chunkConfig.MaxSize = *req.ChunkSize
		}
		if req.ChunkOverlap != nil {
			chunkConfig.Overlap = *req.ChunkOverlap
		}
		if req.MinChunkSize != nil {
			chunkConfig.MinSize = *req.MinChunkSize
		}
		if req.Strategy != nil && *req.Strategy != "" {
			chunkConfig.Strategy = *req.Strategy
		}
	}

	return chunkConfig
}

func marshalMetadata(metadata map[string]interface{}) (string, error) {
	if len(metadata) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalMetadata(metadata string) map[string]interface{} {
	if metadata == "" || metadata == "{}" {
		return nil
	}
	result := make(map[string]interface{})
	if err := json.Unmarshal([]byte(metadata), &result); err != nil {
		log.Warnf("unmarshal document metadata error: %v", err)
		return nil
	}
	return result
}

func newDocumentRepository(repoFactory factory.Factory, session interfaces.Session) repository.DocumentRepository {
	repo, err := repoFactory.NewDocumentRepository(session)
	if err != nil {
		panic("failed to create document repository: " + err.Error())
	}
	return repo
}

func newDocumentChunkRepository(repoFactory factory.Factory, session interfaces.Session) repository.DocumentChunkRepository {
	repo, err := repoFactory.NewDocumentChunkRepository(session)
	if err != nil {
		panic("failed to create document chunk repository: " + err.Error())
	}
	return repo
}
