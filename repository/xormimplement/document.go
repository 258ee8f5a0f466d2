package xormimplement

import (
	"encoding/json"
	"fmt"

	"github.com/kyanome/rag-backend/entity"
	"github.com/kyanome/rag-backend/model"
	"github.com/kyanome/rag-backend/repository"

	"xorm.io/builder"
)

type DocumentRepository struct {
	session *Session
}

func NewDocumentRepository(session *Session) repository.DocumentRepository {
	return &DocumentRepository{session: session}
}

func buildDocumentsQueryConditions(condition *model.GetDocumentsCondition) builder.Cond {
	var conds []builder.Cond

	if condition.OwnerID != nil && *condition.OwnerID != "" {
		conds = append(conds, builder.Eq{entity.DocumentFieldOwnerID: *condition.OwnerID})
	}
	if len(condition.IDs) > 0 {
		conds = append(conds, builder.In(entity.DocumentFieldID, condition.IDs))
	}
	if condition.Title != nil && *condition.Title != "" {
		// pg 下 LIKE 区分大小写，标题过滤用 ILIKE
		conds = append(conds, builder.Expr(entity.DocumentFieldTitle+" ILIKE ?", "%"+*condition.Title+"%"))
	}
	if condition.Category != nil && *condition.Category != "" {
		conds = append(conds, builder.Expr(entity.DocumentFieldMetadata+"->>'category' = ?", *condition.Category))
	}
	if len(condition.Tags) > 0 {
		// JSONB 包含查询，命中要求包含全部标签
		tagsJSON, err := json.Marshal(condition.Tags)
		if err == nil {
			conds = append(conds, builder.Expr(entity.DocumentFieldMetadata+"->'tags' @> ?::jsonb", string(tagsJSON)))
		}
	}

	if len(conds) == 0 {
		return nil
	}
	return builder.And(conds...)
}

func (r *DocumentRepository) Insert(doc *entity.Document) error {
	if doc == nil {
		return fmt.Errorf("document cannot be nil")
	}
	if doc.ID == "" {
		return fmt.Errorf("document id is required")
	}

	_, err := r.session.Table(entity.TableNameDocuments).Insert(doc)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	return nil
}

// Update 带乐观锁的更新，where 条件同时匹配 id 和 version，不匹配时影响 0 行
func (r *DocumentRepository) Update(id string, version int, req *model.UpdateDocumentCondition) (int64, error) {
	if id == "" {
		return 0, fmt.Errorf("document id is required")
	}
	if req == nil {
		return 0, fmt.Errorf("update request cannot be nil")
	}

	updateData := make(map[string]interface{})
	if req.Title != nil {
		updateData[entity.DocumentFieldTitle] = *req.Title
	}
	if req.Content != nil {
		updateData[entity.DocumentFieldContent] = *req.Content
	}
	if req.Metadata != nil {
		updateData[entity.DocumentFieldMetadata] = *req.Metadata
	}

	if len(updateData) == 0 {
		return 0, fmt.Errorf("at least one field must be updated")
	}

	updateData[entity.DocumentFieldVersion] = version + 1

	affected, err := r.session.Table(entity.TableNameDocuments).
		Where(builder.Eq{
			entity.DocumentFieldID:      id,
			entity.DocumentFieldVersion: version,
		}).
		Update(updateData)
	if err != nil {
		return 0, fmt.Errorf("failed to update document: %w", err)
	}

	return affected, nil
}

func (r *DocumentRepository) Delete(id string) error {
	if id == "" {
		return fmt.Errorf("document id is required")
	}

	_, err := r.session.Table(entity.TableNameDocuments).
		Where(builder.Eq{entity.DocumentFieldID: id}).
		Delete(&entity.Document{})
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	return nil
}

func (r *DocumentRepository) Get(id string) (*entity.Document, error) {
	if id == "" {
		return nil, fmt.Errorf("document id is required")
	}

	result := &entity.Document{}
	ok, err := r.session.Table(entity.TableNameDocuments).
		Where(builder.Eq{entity.DocumentFieldID: id}).
		Get(result)
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	if !ok {
		return nil, nil
	}

	return result, nil
}

func (r *DocumentRepository) List(condition *model.GetDocumentsCondition) ([]*entity.Document, int64, error) {
	if condition == nil {
		return nil, 0, fmt.Errorf("get condition cannot be nil")
	}

	cond := buildDocumentsQueryConditions(condition)

	session := r.session.Table(entity.TableNameDocuments)
	if cond != nil {
		session = session.Where(cond)
	}

	pagerOrder(session, condition, WithDefaultOrderField(entity.DocumentFieldCreatedAt))

	var results []*entity.Document
	total, err := session.FindAndCount(&results)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list documents: %w", err)
	}

	return results, total, nil
}
