package xormimplement

import (
	"testing"

	"github.com/kyanome/rag-backend/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xorm.io/builder"
)

func TestBuildChunksQueryConditionsMissingEmbedding(t *testing.T) {
	cond := buildChunksQueryConditions(&model.GetChunksCondition{
		OnlyMissingEmbedding: true,
	})
	require.NotNil(t, cond)

	sql, args, err := builder.ToSQL(cond)
	require.NoError(t, err)

	// vector 列只能用 IS NULL 判空，空串字面量会被 pgvector 拒绝
	assert.Contains(t, sql, "embedding IS NULL")
	assert.NotContains(t, sql, "embedding=?")
	assert.Empty(t, args)
}

func TestBuildChunksQueryConditionsByDocument(t *testing.T) {
	documentID := "doc-1"
	cond := buildChunksQueryConditions(&model.GetChunksCondition{
		DocumentID: &documentID,
	})
	require.NotNil(t, cond)

	sql, args, err := builder.ToSQL(cond)
	require.NoError(t, err)
	assert.Contains(t, sql, "document_id=?")
	assert.Equal(t, []interface{}{"doc-1"}, args)
}
