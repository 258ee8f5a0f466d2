package search

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/kyanome/rag-backend/constant"
	"github.com/kyanome/rag-backend/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeHybridResultsBothHit(t *testing.T) {
	keyword := []*model.SearchResultItem{
		{DocumentID: "d1", ChunkID: "c1", Score: 0.6, MatchType: string(constant.MatchTypeKeyword), Highlight: "...营收..."},
	}
	vector := []*model.SearchResultItem{
		{DocumentID: "d1", ChunkID: "c2", Score: 0.8, MatchType: string(constant.MatchTypeVector)},
	}

	results := MergeHybridResults(keyword, vector, 10)
	require.Len(t, results, 1)

	// 两路命中取平均分并标记 both，分块信息取向量侧，保留关键词高亮
	assert.InDelta(t, 0.7, results[0].Score, 1e-9)
	assert.Equal(t, string(constant.MatchTypeBoth), results[0].MatchType)
	assert.Equal(t, "c2", results[0].ChunkID)
	assert.Equal(t, "...营收...", results[0].Highlight)
	assert.Equal(t, string(constant.ConfidenceLevelMedium), results[0].Confidence)
}

func TestMergeHybridResultsKeywordScoreHigher(t *testing.T) {
	keyword := []*model.SearchResultItem{
		{DocumentID: "d1", DocumentTitle: "年报", Content: "关键词摘要", ChunkID: "", Score: 0.9,
			MatchType: string(constant.MatchTypeKeyword), Highlight: "...利润..."},
	}
	vector := []*model.SearchResultItem{
		{DocumentID: "d1", ChunkID: "c7", ChunkIndex: 7, Score: 0.5, MatchType: string(constant.MatchTypeVector)},
	}

	results := MergeHybridResults(keyword, vector, 10)
	require.Len(t, results, 1)

	// 关键词得分更高时分块信息仍取向量侧，标题和摘要保留关键词侧
	assert.InDelta(t, 0.7, results[0].Score, 1e-9)
	assert.Equal(t, string(constant.MatchTypeBoth), results[0].MatchType)
	assert.Equal(t, "c7", results[0].ChunkID)
	assert.Equal(t, 7, results[0].ChunkIndex)
	assert.Equal(t, "年报", results[0].DocumentTitle)
	assert.Equal(t, "关键词摘要", results[0].Content)
	assert.Equal(t, "...利润...", results[0].Highlight)
}

func TestMergeHybridResultsSingleHit(t *testing.T) {
	keyword := []*model.SearchResultItem{
		{DocumentID: "d1", ChunkID: "c1", Score: 0.5, MatchType: string(constant.MatchTypeKeyword)},
	}
	vector := []*model.SearchResultItem{
		{DocumentID: "d2", ChunkID: "c2", Score: 0.9, MatchType: string(constant.MatchTypeVector)},
	}

	results := MergeHybridResults(keyword, vector, 10)
	require.Len(t, results, 2)

	// 按得分降序
	assert.Equal(t, "d2", results[0].DocumentID)
	assert.Equal(t, string(constant.MatchTypeVector), results[0].MatchType)
	assert.Equal(t, "d1", results[1].DocumentID)
	assert.Equal(t, string(constant.MatchTypeKeyword), results[1].MatchType)
}

func TestMergeHybridResultsLimit(t *testing.T) {
	keyword := []*model.SearchResultItem{
		{DocumentID: "d1", Score: 0.9},
		{DocumentID: "d2", Score: 0.8},
		{DocumentID: "d3", Score: 0.7},
	}

	results := MergeHybridResults(keyword, nil, 2)
	require.Len(t, results, 2)
	assert.Equal(t, "d1", results[0].DocumentID)
	assert.Equal(t, "d2", results[1].DocumentID)
}

func TestMergeHybridResultsDoesNotMutateInputs(t *testing.T) {
	keyword := []*model.SearchResultItem{
		{DocumentID: "d1", ChunkID: "c1", Score: 0.6},
	}
	vector := []*model.SearchResultItem{
		{DocumentID: "d1", ChunkID: "c1", Score: 0.8},
	}

	MergeHybridResults(keyword, vector, 10)
	assert.InDelta(t, 0.6, keyword[0].Score, 1e-9)
	assert.InDelta(t, 0.8, vector[0].Score, 1e-9)
}

func TestNormalizeScores(t *testing.T) {
	items := []*model.SearchResultItem{
		{Score: 2.0},
		{Score: 1.0},
		{Score: 0.5},
	}
	NormalizeScores(items)
	assert.InDelta(t, 1.0, items[0].Score, 1e-9)
	assert.InDelta(t, 0.5, items[1].Score, 1e-9)
	assert.InDelta(t, 0.25, items[2].Score, 1e-9)

	// 全零时保持不变
	zero := []*model.SearchResultItem{{Score: 0}}
	NormalizeScores(zero)
	assert.Equal(t, 0.0, zero[0].Score)
}

func TestExtractHighlight(t *testing.T) {
	content := "The quarterly revenue grew by twelve percent compared to last year, driven mostly by the subscription business in overseas markets."

	snippet := ExtractHighlight(content, "revenue")
	assert.Contains(t, snippet, "revenue")
	assert.True(t, strings.HasSuffix(snippet, "..."))

	// 命中词在开头时没有前缀省略号
	snippet = ExtractHighlight(content, "quarterly")
	assert.False(t, strings.HasPrefix(snippet, "..."))

	// 未命中时返回开头片段
	snippet = ExtractHighlight(content, "nonexistent")
	assert.NotEmpty(t, snippet)
	assert.True(t, strings.HasPrefix(content, strings.TrimSuffix(snippet, "...")))

	assert.Equal(t, "", ExtractHighlight("", "query"))
	assert.Equal(t, "", ExtractHighlight(content, ""))
}

func TestExtractHighlightMultibyteContent(t *testing.T) {
	// 窗口边界落在多字节字符中间时不能产生非法 UTF-8
	chinese := strings.Repeat("营收持续增长，", 40) + "revenue " + strings.Repeat("订阅业务表现强劲。", 40)

	snippet := ExtractHighlight(chinese, "revenue")
	assert.True(t, utf8.ValidString(snippet))
	assert.Contains(t, snippet, "revenue")

	// 未命中时的开头截断同样要对齐字符边界
	snippet = ExtractHighlight(chinese, "nonexistent")
	assert.True(t, utf8.ValidString(snippet))
	assert.NotEmpty(t, snippet)
}

func TestCacheKey(t *testing.T) {
	key1 := CacheKey("u1", "营收增长", "hybrid", 10, 0.7, []string{"d1", "d2"})
	key2 := CacheKey("u1", "营收增长", "hybrid", 10, 0.7, []string{"d2", "d1"})

	// 文档ID顺序不影响缓存键
	assert.Equal(t, key1, key2)
	assert.True(t, strings.HasPrefix(key1, "search:"))

	// 任一参数变化都会产生不同的键
	assert.NotEqual(t, key1, CacheKey("u2", "营收增长", "hybrid", 10, 0.7, []string{"d1", "d2"}))
	assert.NotEqual(t, key1, CacheKey("u1", "营收下滑", "hybrid", 10, 0.7, []string{"d1", "d2"}))
	assert.NotEqual(t, key1, CacheKey("u1", "营收增长", "keyword", 10, 0.7, []string{"d1", "d2"}))
	assert.NotEqual(t, key1, CacheKey("u1", "营收增长", "hybrid", 20, 0.7, []string{"d1", "d2"}))
	assert.NotEqual(t, key1, CacheKey("u1", "营收增长", "hybrid", 10, 0.8, []string{"d1", "d2"}))
	assert.NotEqual(t, key1, CacheKey("u1", "营收增长", "hybrid", 10, 0.7, nil))
}

func TestSearchRequestValidate(t *testing.T) {
	valid := &model.SearchRequest{Query: "营收"}
	assert.Nil(t, valid.Validate())

	empty := &model.SearchRequest{}
	modelErr := empty.Validate()
	require.NotNil(t, modelErr)
	assert.Equal(t, model.ErrorSearchQueryInvalid, modelErr.Code)

	tooLong := &model.SearchRequest{Query: strings.Repeat("a", 1001)}
	modelErr = tooLong.Validate()
	require.NotNil(t, modelErr)
	assert.Equal(t, model.ErrorSearchQueryInvalid, modelErr.Code)

	badType := &model.SearchRequest{Query: "营收", SearchType: "fuzzy"}
	modelErr = badType.Validate()
	require.NotNil(t, modelErr)
	assert.Equal(t, model.ErrorSearchTypeInvalid, modelErr.Code)

	badLimit := 0
	modelErr = (&model.SearchRequest{Query: "营收", Limit: &badLimit}).Validate()
	require.NotNil(t, modelErr)
	assert.Equal(t, model.ErrorSearchLimitInvalid, modelErr.Code)

	overLimit := 101
	modelErr = (&model.SearchRequest{Query: "营收", Limit: &overLimit}).Validate()
	require.NotNil(t, modelErr)
	assert.Equal(t, model.ErrorSearchLimitInvalid, modelErr.Code)

	badThreshold := 1.5
	modelErr = (&model.SearchRequest{Query: "营收", SimilarityThreshold: &badThreshold}).Validate()
	require.NotNil(t, modelErr)
	assert.Equal(t, model.ErrorSearchThreshold, modelErr.Code)
}
