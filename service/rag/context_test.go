package rag

import (
	"strings"
	"testing"

	"github.com/kyanome/rag-backend/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildContextNumbering(t *testing.T) {
	results := []*model.SearchResultItem{
		{DocumentID: "d1", ChunkID: "c1", DocumentTitle: "报表说明", Content: "第一季度营收增长", Score: 0.9},
		{DocumentID: "d2", ChunkID: "c2", DocumentTitle: "年度总结", Content: "全年营收持平", Score: 0.8},
	}

	contextText, sources, uniqueDocs := BuildContext(results, 4000)
	require.Len(t, sources, 2)
	assert.Equal(t, 2, uniqueDocs)

	assert.Contains(t, contextText, "[Source 1] 报表说明")
	assert.Contains(t, contextText, "[Source 2] 年度总结")
	assert.Equal(t, 1, sources[0].Index)
	assert.Equal(t, 2, sources[1].Index)
}

func TestBuildContextDeduplicates(t *testing.T) {
	// 同一分块被两路命中，保留得分高的那条
	results := []*model.SearchResultItem{
		{DocumentID: "d1", ChunkID: "c1", DocumentTitle: "报表说明", Content: "低分内容", Score: 0.5},
		{DocumentID: "d1", ChunkID: "c1", DocumentTitle: "报表说明", Content: "高分内容", Score: 0.9},
		{DocumentID: "d1", ChunkID: "c2", DocumentTitle: "报表说明", Content: "另一个分块", Score: 0.7},
	}

	contextText, sources, uniqueDocs := BuildContext(results, 4000)
	require.Len(t, sources, 2)
	assert.Equal(t, 1, uniqueDocs)

	assert.Contains(t, contextText, "高分内容")
	assert.NotContains(t, contextText, "低分内容")
	assert.InDelta(t, 0.9, sources[0].Score, 1e-9)
}

func TestBuildContextLengthLimit(t *testing.T) {
	long := strings.Repeat("a", 300)
	results := []*model.SearchResultItem{
		{DocumentID: "d1", ChunkID: "c1", DocumentTitle: "t", Content: long, Score: 0.9},
		{DocumentID: "d1", ChunkID: "c2", DocumentTitle: "t", Content: long, Score: 0.8},
		{DocumentID: "d1", ChunkID: "c3", DocumentTitle: "t", Content: long, Score: 0.7},
	}

	// 限制只够放下第一块
	contextText, sources, _ := BuildContext(results, 400)
	require.Len(t, sources, 1)
	assert.LessOrEqual(t, len(contextText), 400)

	// 第一块超限也要放进去，保证上下文非空
	contextText, sources, _ = BuildContext(results, 100)
	require.Len(t, sources, 1)
	assert.Contains(t, contextText, "[Source 1]")
}

func TestBuildContextEmpty(t *testing.T) {
	contextText, sources, uniqueDocs := BuildContext(nil, 4000)
	assert.Equal(t, "", contextText)
	assert.Empty(t, sources)
	assert.Equal(t, 0, uniqueDocs)
}
