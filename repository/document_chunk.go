package repository

import (
	"github.com/kyanome/rag-backend/entity"
	"github.com/kyanome/rag-backend/model"
)

type DocumentChunkRepository interface {
	Insert(data []*entity.DocumentChunk) error
	DeleteByDocumentID(documentID string) (int64, error)
	List(condition *model.GetChunksCondition) ([]*entity.DocumentChunk, int64, error)
	Count(condition *model.GetChunksCondition) (int64, error)
	UpdateEmbedding(id string, embedding string) error
	// KeywordSearch 基于 Postgres 全文索引的关键词检索
	KeywordSearch(condition *model.KeywordSearchCondition) ([]*entity.ChunkSearchRow, error)
	// VectorSearch 基于 pgvector 余弦相似度的向量检索
	VectorSearch(condition *model.VectorSearchCondition) ([]*entity.ChunkSearchRow, error)
}
