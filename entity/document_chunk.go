package entity

import "time"

const (
	TableNameDocumentChunks = "document_chunks"

	DocumentChunkFieldID         = "id"
	DocumentChunkFieldDocumentID = "document_id"
	DocumentChunkFieldContent    = "content"
	DocumentChunkFieldEmbedding  = "embedding"
	DocumentChunkFieldMetadata   = "chunk_metadata"
	DocumentChunkFieldCreatedAt  = "created_at"
)

// DocumentChunk 文档分块实体，embedding 为 nil 表示尚未向量化
// embedding 列是 pg vector 类型，不接受空串字面量，必须用指针让 xorm 写入 NULL
type DocumentChunk struct {
	ID         string    `xorm:"pk varchar(36) 'id'" json:"id"`
	DocumentID string    `xorm:"varchar(36) index 'document_id'" json:"document_id"`
	Content    string    `xorm:"text 'content'" json:"content"`
	Embedding  *string   `xorm:"'embedding'" json:"embedding,omitempty"` // PostgreSQL vector 类型，存储为字符串
	Metadata   string    `xorm:"'chunk_metadata'" json:"chunk_metadata"` // JSONB 类型，存储为 JSON 字符串
	CreatedAt  time.Time `xorm:"created 'created_at'" json:"created_at"`
}

func (e *DocumentChunk) TableName() string {
	return TableNameDocumentChunks
}

// ChunkMetadata chunk_metadata 列的结构
type ChunkMetadata struct {
	ChunkIndex          int `json:"chunk_index"`
	StartPosition       int `json:"start_position"`
	EndPosition         int `json:"end_position"`
	TotalChunks         int `json:"total_chunks"`
	OverlapWithPrevious int `json:"overlap_with_previous"`
	OverlapWithNext     int `json:"overlap_with_next"`
}
