package entity

import "time"

const (
	TableNameDocuments = "documents"

	DocumentFieldID        = "id"
	DocumentFieldOwnerID   = "owner_id"
	DocumentFieldTitle     = "title"
	DocumentFieldFilePath  = "file_path"
	DocumentFieldContent   = "content"
	DocumentFieldMetadata  = "document_metadata"
	DocumentFieldVersion   = "version"
	DocumentFieldCreatedAt = "created_at"
	DocumentFieldUpdatedAt = "updated_at"
)

// Document 文档数据库实体
type Document struct {
	ID        string    `xorm:"pk varchar(36) 'id'" json:"id"`
	OwnerID   string    `xorm:"varchar(36) index 'owner_id'" json:"owner_id"`
	Title     string    `xorm:"varchar(512) 'title'" json:"title"`
	FilePath  string    `xorm:"varchar(1024) 'file_path'" json:"file_path"`
	Content   string    `xorm:"text 'content'" json:"content"`
	Metadata  string    `xorm:"'document_metadata'" json:"document_metadata"` // JSONB 类型，存储为 JSON 字符串
	Version   int       `xorm:"version 'version'" json:"version"`             // 乐观锁
	CreatedAt time.Time `xorm:"created 'created_at'" json:"created_at"`
	UpdatedAt time.Time `xorm:"updated 'updated_at'" json:"updated_at"`
}

func (e *Document) TableName() string {
	return TableNameDocuments
}
