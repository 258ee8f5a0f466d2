package model

import "github.com/kyanome/rag-backend/constant"

const (
	SearchQueryMaxLength = 1000
	SearchLimitMax       = 100
)

// SearchRequest 检索请求
type SearchRequest struct {
	Query               string   `json:"query" binding:"required"`
	SearchType          string   `json:"search_type"` // keyword / vector / hybrid，默认 hybrid
	Limit               *int     `json:"limit"`
	SimilarityThreshold *float64 `json:"similarity_threshold"`
	DocumentIDs         []string `json:"document_ids"`
}

// Validate 校验检索请求参数
func (r *SearchRequest) Validate() *Error {
	if len(r.Query) == 0 || len(r.Query) > SearchQueryMaxLength {
		return NewError(ErrorSearchQueryInvalid, nil)
	}

	if r.SearchType != "" && !constant.SearchType(r.SearchType).IsValid() {
		return NewError(ErrorSearchTypeInvalid, nil)
	}

	if r.Limit != nil && (*r.Limit < 1 || *r.Limit > SearchLimitMax) {
		return NewError(ErrorSearchLimitInvalid, nil)
	}

	if r.SimilarityThreshold != nil && (*r.SimilarityThreshold < 0 || *r.SimilarityThreshold > 1) {
		return NewError(ErrorSearchThreshold, nil)
	}

	return nil
}

// KeywordSearchCondition 关键词检索条件，OwnerID 非空时只检索该用户的文档
type KeywordSearchCondition struct {
	Query       string
	OwnerID     *string
	DocumentIDs []string
	Limit       int
}

// VectorSearchCondition 向量检索条件，QueryVector 为 pgvector 字符串格式
type VectorSearchCondition struct {
	QueryVector string
	Threshold   *float64
	OwnerID     *string
	DocumentIDs []string
	Limit       int
}

// SearchResultItem 单条检索结果
type SearchResultItem struct {
	DocumentID    string  `json:"document_id"`
	DocumentTitle string  `json:"document_title"`
	ChunkID       string  `json:"chunk_id"`
	ChunkIndex    int     `json:"chunk_index"`
	Content       string  `json:"content"`
	Score         float64 `json:"score"`
	MatchType     string  `json:"match_type"` // keyword / vector / both
	Confidence    string  `json:"confidence"` // high / medium / low
	Highlight     string  `json:"highlight,omitempty"`
}

// SearchResponse 检索响应
type SearchResponse struct {
	Results             []*SearchResultItem `json:"results"`
	TotalCount          int                 `json:"total_count"`
	SearchTimeMs        int64               `json:"search_time_ms"`
	QueryType           string              `json:"query_type"`
	QueryText           string              `json:"query_text"`
	HighConfidenceCount int                 `json:"high_confidence_count"`
	CacheHit            bool                `json:"cache_hit"`
}
