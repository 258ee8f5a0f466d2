package repository

import (
	"github.com/kyanome/rag-backend/entity"
	"github.com/kyanome/rag-backend/model"
)

type DocumentRepository interface {
	Insert(doc *entity.Document) error
	// Update 带乐观锁的更新，version 不匹配时影响行数为 0
	Update(id string, version int, req *model.UpdateDocumentCondition) (int64, error)
	Delete(id string) error
	Get(id string) (*entity.Document, error)
	List(condition *model.GetDocumentsCondition) ([]*entity.Document, int64, error)
}
