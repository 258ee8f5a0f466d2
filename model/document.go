package model

import "time"

// CreateDocumentRequest 创建文档请求，content 为空时从 file_path 指向的文件提取
type CreateDocumentRequest struct {
	Title    string            `json:"title" binding:"required"`
	Content  string            `json:"content"`
	FilePath string            `json:"file_path"`
	Metadata map[string]interface{} `json:"metadata"`
}

// UpdateDocumentRequest 更新文档请求
type UpdateDocumentRequest struct {
	Title    *string           `json:"title"`
	Content  *string           `json:"content"`
	Metadata map[string]interface{} `json:"metadata"`
	Version  int               `json:"version"` // 乐观锁版本号
}

// DocumentResponse 文档响应
type DocumentResponse struct {
	ID         string            `json:"id"`
	OwnerID    string            `json:"owner_id"`
	Title      string            `json:"title"`
	FilePath   string            `json:"file_path,omitempty"`
	Content    string            `json:"content,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Version    int               `json:"version"`
	ChunkCount int               `json:"chunk_count"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// DocumentListFilter 文档列表过滤条件
type DocumentListFilter struct {
	Title    string
	Category string
	Tags     []string
}

// ListDocumentsResponse 文档列表响应
type ListDocumentsResponse struct {
	Documents  []*DocumentResponse `json:"documents"`
	TotalCount int64               `json:"total_count"`
	Limit      int                 `json:"limit"`
	Offset     int                 `json:"offset"`
}

// ChunkDocumentRequest 文档分块请求，空值使用配置默认值
type ChunkDocumentRequest struct {
	ChunkSize    *int    `json:"chunk_size"`
	ChunkOverlap *int    `json:"chunk_overlap"`
	MinChunkSize *int    `json:"min_chunk_size"`
	Strategy     *string `json:"strategy"` // paragraph / sentence / fixed
}

// ChunkDocumentResponse 文档分块响应
type ChunkDocumentResponse struct {
	DocumentID    string `json:"document_id"`
	ChunksCreated int    `json:"chunks_created"`
	Strategy      string `json:"strategy"`
	ChunkSize     int    `json:"chunk_size"`
	ChunkOverlap  int    `json:"chunk_overlap"`
}

// GenerateEmbeddingsResponse 生成向量响应
type GenerateEmbeddingsResponse struct {
	DocumentID         string `json:"document_id"`
	ChunksProcessed    int    `json:"chunks_processed"`
	EmbeddingsCreated  int    `json:"embeddings_created"`
	ProcessingTimeMs   int64  `json:"processing_time_ms"`
	EmbeddingDimension int    `json:"embedding_dimension"`
}
