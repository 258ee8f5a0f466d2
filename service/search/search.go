package search

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kyanome/rag-backend/config"
	"github.com/kyanome/rag-backend/constant"
	"github.com/kyanome/rag-backend/entity"
	"github.com/kyanome/rag-backend/model"
	"github.com/kyanome/rag-backend/pkg/clients/embedding"
	redisclient "github.com/kyanome/rag-backend/pkg/clients/redis"
	"github.com/kyanome/rag-backend/pkg/tools"
	"github.com/kyanome/rag-backend/repository"
	"github.com/kyanome/rag-backend/repository/factory"
	"github.com/kyanome/rag-backend/repository/interfaces"

	log "github.com/sirupsen/logrus"
)

const (
	cacheKeyPrefix = "search:"

	defaultSimilarityThreshold = 0.7
	highlightWindow            = 60
)

type Service struct {
	repositoryFactory factory.Factory
}

func NewService(repositoryFactory factory.Factory) *Service {
	return &Service{repositoryFactory: repositoryFactory}
}

// Search 执行检索，按 search_type 分发到关键词、向量或混合检索，结果过 redis 缓存
func (s *Service) Search(ctx context.Context, userID, role string, req *model.SearchRequest) (*model.SearchResponse, *model.Error) {
	if modelErr := req.Validate(); modelErr != nil {
		return nil, modelErr
	}

	searchType := constant.SearchType(req.SearchType)
	if req.SearchType == "" {
		searchType = constant.SearchTypeHybrid
	}

	cfg := config.GetInstance()
	limit := cfg.GetIntOrDefault(config.SearchDefaultLimit, constant.DefaultPageLimit)
	if req.Limit != nil {
		limit = *req.Limit
	}
	threshold := cfg.GetFloat64OrDefault(config.SearchSimilarityThreshold, defaultSimilarityThreshold)
	if req.SimilarityThreshold != nil {
		threshold = *req.SimilarityThreshold
	}

	cacheEnabled := cfg.GetBoolOrDefault(config.SearchCacheEnabled, true)
	cacheKey := CacheKey(userID, req.Query, string(searchType), limit, threshold, req.DocumentIDs)

	if cacheEnabled {
		if cached := s.cacheGet(ctx, cacheKey); cached != nil {
			cached.CacheHit = true
			return cached, nil
		}
	}

	startTime := time.Now()

	var ownerID *string
	if constant.UserRole(role) != constant.UserRoleAdmin {
		ownerID = &userID
	}

	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	chunkRepo := newDocumentChunkRepository(s.repositoryFactory, session)

	var results []*model.SearchResultItem
	var modelErr *model.Error
	switch searchType {
	case constant.SearchTypeKeyword:
		results, modelErr = s.keywordSearch(chunkRepo, req.Query, ownerID, req.DocumentIDs, limit)
	case constant.SearchTypeVector:
		results, modelErr = s.vectorSearch(ctx, chunkRepo, req.Query, ownerID, req.DocumentIDs, limit, threshold)
	default:
		results, modelErr = s.hybridSearch(ctx, chunkRepo, req.Query, ownerID, req.DocumentIDs, limit, threshold)
	}
	if modelErr != nil {
		return nil, modelErr
	}

	highCount := 0
	for _, item := range results {
		if item.Confidence == string(constant.ConfidenceLevelHigh) {
			highCount++
		}
	}

	resp := &model.SearchResponse{
		Results:             results,
		TotalCount:          len(results),
		SearchTimeMs:        time.Since(startTime).Milliseconds(),
		QueryType:           string(searchType),
		QueryText:           req.Query,
		HighConfidenceCount: highCount,
	}

	if cacheEnabled {
		s.cachePut(ctx, cacheKey, resp)
	}

	return resp, nil
}

// keywordSearch 全文检索，ts_rank 得分归一化到 0~1 后评置信度
func (s *Service) keywordSearch(chunkRepo repository.DocumentChunkRepository, query string, ownerID *string, documentIDs []string, limit int) ([]*model.SearchResultItem, *model.Error) {
	rows, err := chunkRepo.KeywordSearch(&model.KeywordSearchCondition{
		Query:       query,
		OwnerID:     ownerID,
		DocumentIDs: documentIDs,
		Limit:       limit,
	})
	if err != nil {
		return nil, model.NewError(model.ErrorDB, err)
	}

	items := rowsToItems(rows, constant.MatchTypeKeyword)
	NormalizeScores(items)
	for _, item := range items {
		item.Confidence = string(constant.ItemConfidenceLevel(item.Score))
		item.Highlight = ExtractHighlight(item.Content, query)
	}
	return items, nil
}

// vectorSearch 语义检索，余弦相似度直接作为得分
func (s *Service) vectorSearch(ctx context.Context, chunkRepo repository.DocumentChunkRepository, query string, ownerID *string, documentIDs []string, limit int, threshold float64) ([]*model.SearchResultItem, *model.Error) {
	embeddingClient, err := embedding.GetInstance()
	if err != nil {
		return nil, model.NewError(model.ErrorEmbeddingUnavailable, err)
	}

	queryVector, err := embeddingClient.GetTextEmbedding(ctx, query)
	if err != nil {
		return nil, model.NewError(model.ErrorEmbeddingUnavailable, err)
	}

	rows, err := chunkRepo.VectorSearch(&model.VectorSearchCondition{
		QueryVector: embedding.VectorToString(queryVector),
		Threshold:   &threshold,
		OwnerID:     ownerID,
		DocumentIDs: documentIDs,
		Limit:       limit,
	})
	if err != nil {
		return nil, model.NewError(model.ErrorDB, err)
	}

	items := rowsToItems(rows, constant.MatchTypeVector)
	for _, item := range items {
		item.Confidence = string(constant.ItemConfidenceLevel(item.Score))
	}
	return items, nil
}

// hybridSearch 关键词和向量检索各取 limit 条后合并
func (s *Service) hybridSearch(ctx context.Context, chunkRepo repository.DocumentChunkRepository, query string, ownerID *string, documentIDs []string, limit int, threshold float64) ([]*model.SearchResultItem, *model.Error) {
	keywordItems, modelErr := s.keywordSearch(chunkRepo, query, ownerID, documentIDs, limit)
	if modelErr != nil {
		return nil, modelErr
	}

	vectorItems, modelErr := s.vectorSearch(ctx, chunkRepo, query, ownerID, documentIDs, limit, threshold)
	if modelErr != nil {
		return nil, modelErr
	}

	return MergeHybridResults(keywordItems, vectorItems, limit), nil
}

// MergeHybridResults 以文档为键合并两路结果：两路都命中的取平均分并标记 both，
// 标题、摘要和高亮保留关键词侧，分块信息取向量侧，最后按得分降序截断到 limit
func MergeHybridResults(keywordItems, vectorItems []*model.SearchResultItem, limit int) []*model.SearchResultItem {
	merged := make(map[string]*model.SearchResultItem)
	order := make([]string, 0, len(keywordItems)+len(vectorItems))

	for _, item := range keywordItems {
		copied := *item
		merged[item.DocumentID] = &copied
		order = append(order, item.DocumentID)
	}

	for _, item := range vectorItems {
		existing, ok := merged[item.DocumentID]
		if !ok {
			copied := *item
			merged[item.DocumentID] = &copied
			order = append(order, item.DocumentID)
			continue
		}

		existing.Score = (existing.Score + item.Score) / 2
		existing.ChunkID = item.ChunkID
		existing.ChunkIndex = item.ChunkIndex
		existing.MatchType = string(constant.MatchTypeBoth)
		existing.Confidence = string(constant.ItemConfidenceLevel(existing.Score))
	}

	results := make([]*model.SearchResultItem, 0, len(merged))
	for _, id := range order {
		results = append(results, merged[id])
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// NormalizeScores 按最大值把得分归一化到 0~1，全零时保持不变
func NormalizeScores(items []*model.SearchResultItem) {
	var maxScore float64
	for _, item := range items {
		if item.Score > maxScore {
			maxScore = item.Score
		}
	}
	if maxScore <= 0 {
		return
	}
	for _, item := range items {
		item.Score = item.Score / maxScore
	}
}

// ExtractHighlight 取查询词首次出现位置前后的片段作为高亮摘要
func ExtractHighlight(content, query string) string {
	if content == "" || query == "" {
		return ""
	}

	lowerContent := strings.ToLower(content)
	idx := -1
	for _, word := range strings.Fields(strings.ToLower(query)) {
		if pos := strings.Index(lowerContent, word); pos >= 0 && (idx < 0 || pos < idx) {
			idx = pos
		}
	}
	if idx < 0 {
		if len(content) <= 2*highlightWindow {
			return content
		}
		return content[:alignRuneStart(content, 2*highlightWindow)]
	}

	start := idx - highlightWindow
	if start < 0 {
		start = 0
	}
	end := idx + highlightWindow
	if end > len(content) {
		end = len(content)
	}
	start = alignRuneStart(content, start)
	end = alignRuneStart(content, end)

	snippet := content[start:end]
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(content) {
		snippet += "..."
	}
	return snippet
}

// alignRuneStart 把字节下标回退到最近的 UTF-8 字符起始位置，避免截断多字节字符
func alignRuneStart(s string, idx int) int {
	for idx > 0 && idx < len(s) && !utf8.RuneStart(s[idx]) {
		idx--
	}
	return idx
}

// CacheKey 缓存键，包含用户和全部检索参数，保证不同请求不会串缓存
func CacheKey(userID, query, searchType string, limit int, threshold float64, documentIDs []string) string {
	ids := append([]string(nil), documentIDs...)
	sort.Strings(ids)
	raw := fmt.Sprintf("%s|%s|%s|%d|%.4f|%s", userID, query, searchType, limit, threshold, strings.Join(ids, ","))
	return fmt.Sprintf("%s%x", cacheKeyPrefix, sha1.Sum([]byte(raw)))
}

func (s *Service) cacheGet(ctx context.Context, key string) *model.SearchResponse {
	data, err := redisclient.GetInstance().Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}

	resp := &model.SearchResponse{}
	if err = json.Unmarshal(data, resp); err != nil {
		log.Warnf("unmarshal cached search response error: %v", err)
		return nil
	}
	return resp
}

func (s *Service) cachePut(ctx context.Context, key string, resp *model.SearchResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		log.Warnf("marshal search response for cache error: %v", err)
		return
	}

	ttl := time.Duration(config.GetInstance().GetIntOrDefault(config.SearchCacheTTLSeconds, 300)) * time.Second
	if err = redisclient.GetInstance().Set(ctx, key, data, ttl).Err(); err != nil {
		log.Warnf("cache search response error: %v", err)
	}
}

func rowsToItems(rows []*entity.ChunkSearchRow, matchType constant.MatchType) []*model.SearchResultItem {
	items := make([]*model.SearchResultItem, 0, len(rows))
	for _, row := range rows {
		item := &model.SearchResultItem{
			DocumentID:    row.DocumentID,
			DocumentTitle: row.DocumentTitle,
			ChunkID:       row.ChunkID,
			Content:       row.Content,
			Score:         row.Score,
			MatchType:     string(matchType),
		}

		if row.Metadata != "" {
			metadata := &entity.ChunkMetadata{}
			if err := json.Unmarshal([]byte(row.Metadata), metadata); err == nil {
				item.ChunkIndex = metadata.ChunkIndex
			}
		}

		items = append(items, item)
	}
	return items
}

func newDocumentChunkRepository(repoFactory factory.Factory, session interfaces.Session) repository.DocumentChunkRepository {
	repo, err := repoFactory.NewDocumentChunkRepository(session)
	if err != nil {
		panic("failed to create document chunk repository: " + err.Error())
	}
	return repo
}
