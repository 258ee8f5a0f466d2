package xormimplement

import (
	"fmt"
	"strings"

	"github.com/kyanome/rag-backend/entity"
	"github.com/kyanome/rag-backend/model"
	"github.com/kyanome/rag-backend/repository"

	"xorm.io/builder"
)

type DocumentChunkRepository struct {
	session *Session
}

func NewDocumentChunkRepository(session *Session) repository.DocumentChunkRepository {
	return &DocumentChunkRepository{session: session}
}

func buildChunksQueryConditions(condition *model.GetChunksCondition) builder.Cond {
	var conds []builder.Cond

	if condition.DocumentID != nil && *condition.DocumentID != "" {
		conds = append(conds, builder.Eq{entity.DocumentChunkFieldDocumentID: *condition.DocumentID})
	}
	if len(condition.DocumentIDs) > 0 {
		conds = append(conds, builder.In(entity.DocumentChunkFieldDocumentID, condition.DocumentIDs))
	}
	if condition.OnlyMissingEmbedding {
		// vector 列不能与空串比较，未向量化即 NULL
		conds = append(conds, builder.IsNull{entity.DocumentChunkFieldEmbedding})
	}

	if len(conds) == 0 {
		return nil
	}
	return builder.And(conds...)
}

func (r *DocumentChunkRepository) Insert(data []*entity.DocumentChunk) error {
	if len(data) == 0 {
		return fmt.Errorf("document_chunks data cannot be empty")
	}

	for _, item := range data {
		if item == nil {
			return fmt.Errorf("document_chunks item cannot be nil")
		}
	}

	_, err := r.session.Table(entity.TableNameDocumentChunks).Insert(data)
	if err != nil {
		return fmt.Errorf("failed to insert document_chunks: %w", err)
	}

	return nil
}

func (r *DocumentChunkRepository) DeleteByDocumentID(documentID string) (int64, error) {
	if documentID == "" {
		return 0, fmt.Errorf("document_id is required")
	}

	affected, err := r.session.Table(entity.TableNameDocumentChunks).
		Where(builder.Eq{entity.DocumentChunkFieldDocumentID: documentID}).
		Delete(&entity.DocumentChunk{})
	if err != nil {
		return 0, fmt.Errorf("failed to delete document_chunks: %w", err)
	}

	return affected, nil
}

func (r *DocumentChunkRepository) List(condition *model.GetChunksCondition) ([]*entity.DocumentChunk, int64, error) {
	if condition == nil {
		return nil, 0, fmt.Errorf("get condition cannot be nil")
	}

	cond := buildChunksQueryConditions(condition)

	session := r.session.Table(entity.TableNameDocumentChunks)
	if cond != nil {
		session = session.Where(cond)
	}

	pagerOrder(session, condition, WithDefaultOrderField(entity.DocumentChunkFieldCreatedAt))

	var results []*entity.DocumentChunk
	total, err := session.FindAndCount(&results)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list document_chunks: %w", err)
	}

	return results, total, nil
}

func (r *DocumentChunkRepository) Count(condition *model.GetChunksCondition) (int64, error) {
	if condition == nil {
		return 0, fmt.Errorf("get condition cannot be nil")
	}

	cond := buildChunksQueryConditions(condition)

	session := r.session.Table(entity.TableNameDocumentChunks)
	if cond != nil {
		session = session.Where(cond)
	}

	total, err := session.Count(&entity.DocumentChunk{})
	if err != nil {
		return 0, fmt.Errorf("failed to count document_chunks: %w", err)
	}

	return total, nil
}

func (r *DocumentChunkRepository) UpdateEmbedding(id string, embedding string) error {
	if id == "" {
		return fmt.Errorf("chunk id is required")
	}
	if embedding == "" {
		return fmt.Errorf("embedding is required")
	}

	_, err := r.session.Table(entity.TableNameDocumentChunks).
		Where(builder.Eq{entity.DocumentChunkFieldID: id}).
		Update(map[string]interface{}{
			entity.DocumentChunkFieldEmbedding: embedding,
		})
	if err != nil {
		return fmt.Errorf("failed to update chunk embedding: %w", err)
	}

	return nil
}

// KeywordSearch 基于 Postgres 全文索引的关键词检索，ts_rank 作为得分
func (r *DocumentChunkRepository) KeywordSearch(condition *model.KeywordSearchCondition) ([]*entity.ChunkSearchRow, error) {
	if condition == nil {
		return nil, fmt.Errorf("keyword search condition cannot be nil")
	}
	if condition.Query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if condition.Limit <= 0 {
		condition.Limit = 10 // 默认返回10条
	}

	sql := fmt.Sprintf(`
		SELECT c.id AS chunk_id, c.document_id, d.title AS document_title, c.content, c.chunk_metadata,
		       ts_rank(to_tsvector('english', c.content), plainto_tsquery('english', $1)) AS score
		FROM %s c
		JOIN %s d ON d.id = c.document_id
		WHERE to_tsvector('english', c.content) @@ plainto_tsquery('english', $1)
	`, entity.TableNameDocumentChunks, entity.TableNameDocuments)

	args := []interface{}{condition.Query}
	argIndex := 2

	if condition.OwnerID != nil && *condition.OwnerID != "" {
		sql += fmt.Sprintf(" AND d.owner_id = $%d", argIndex)
		args = append(args, *condition.OwnerID)
		argIndex++
	}
	if len(condition.DocumentIDs) > 0 {
		placeholders := make([]string, 0, len(condition.DocumentIDs))
		for _, id := range condition.DocumentIDs {
			placeholders = append(placeholders, fmt.Sprintf("$%d", argIndex))
			args = append(args, id)
			argIndex++
		}
		sql += fmt.Sprintf(" AND c.document_id IN (%s)", strings.Join(placeholders, ", "))
	}

	sql += fmt.Sprintf(" ORDER BY score DESC LIMIT %d", condition.Limit)

	var results []*entity.ChunkSearchRow
	err := r.session.SQL(sql, args...).Find(&results)
	if err != nil {
		return nil, fmt.Errorf("failed to keyword search document_chunks: %w", err)
	}

	return results, nil
}

// VectorSearch 向量相似度检索（使用 pgvector 的余弦相似度）
func (r *DocumentChunkRepository) VectorSearch(condition *model.VectorSearchCondition) ([]*entity.ChunkSearchRow, error) {
	if condition == nil {
		return nil, fmt.Errorf("vector search condition cannot be nil")
	}
	if condition.QueryVector == "" {
		return nil, fmt.Errorf("query_vector is required")
	}
	if condition.Limit <= 0 {
		condition.Limit = 10 // 默认返回10条
	}

	// 使用 pgvector 的 <=> 操作符进行余弦距离计算
	// 1 - (embedding <=> query_vector) 得到相似度分数（越大越相似）
	sql := fmt.Sprintf(`
		SELECT c.id AS chunk_id, c.document_id, d.title AS document_title, c.content, c.chunk_metadata,
		       1 - (c.embedding <=> '%s'::vector) AS score
		FROM %s c
		JOIN %s d ON d.id = c.document_id
		WHERE c.embedding IS NOT NULL
	`, condition.QueryVector, entity.TableNameDocumentChunks, entity.TableNameDocuments)

	var args []interface{}
	argIndex := 1

	if condition.Threshold != nil {
		sql += fmt.Sprintf(" AND (1 - (c.embedding <=> '%s'::vector)) >= $%d", condition.QueryVector, argIndex)
		args = append(args, *condition.Threshold)
		argIndex++
	}
	if condition.OwnerID != nil && *condition.OwnerID != "" {
		sql += fmt.Sprintf(" AND d.owner_id = $%d", argIndex)
		args = append(args, *condition.OwnerID)
		argIndex++
	}
	if len(condition.DocumentIDs) > 0 {
		placeholders := make([]string, 0, len(condition.DocumentIDs))
		for _, id := range condition.DocumentIDs {
			placeholders = append(placeholders, fmt.Sprintf("$%d", argIndex))
			args = append(args, id)
			argIndex++
		}
		sql += fmt.Sprintf(" AND c.document_id IN (%s)", strings.Join(placeholders, ", "))
	}

	// 按相似度降序排序并限制数量
	sql += fmt.Sprintf(" ORDER BY score DESC LIMIT %d", condition.Limit)

	var results []*entity.ChunkSearchRow
	err := r.session.SQL(sql, args...).Find(&results)
	if err != nil {
		return nil, fmt.Errorf("failed to vector search document_chunks: %w", err)
	}

	return results, nil
}
