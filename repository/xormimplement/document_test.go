package xormimplement

import (
	"testing"

	"github.com/kyanome/rag-backend/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xorm.io/builder"
)

func TestBuildDocumentsQueryConditions(t *testing.T) {
	ownerID := "u1"
	title := "季度"
	category := "report"
	cond := buildDocumentsQueryConditions(&model.GetDocumentsCondition{
		OwnerID:  &ownerID,
		Title:    &title,
		Category: &category,
		Tags:     []string{"财务", "2026"},
	})
	require.NotNil(t, cond)

	sql, args, err := builder.ToSQL(cond)
	require.NoError(t, err)

	// 标题不区分大小写，category/tags 走 JSONB
	assert.Contains(t, sql, "title ILIKE ?")
	assert.Contains(t, sql, "document_metadata->>'category' = ?")
	assert.Contains(t, sql, "document_metadata->'tags' @> ?::jsonb")
	assert.Contains(t, args, "%季度%")
	assert.Contains(t, args, "report")
	assert.Contains(t, args, `["财务","2026"]`)
}

func TestBuildDocumentsQueryConditionsEmpty(t *testing.T) {
	cond := buildDocumentsQueryConditions(&model.GetDocumentsCondition{})
	assert.Nil(t, cond)
}
