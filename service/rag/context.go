package rag

import (
	"fmt"
	"strings"

	"github.com/kyanome/rag-backend/model"
)

// BuildContext 把检索结果拼装为带 [Source n] 标记的上下文。
// 同一分块可能被多路检索命中，以 文档ID_分块ID 去重并保留得分最高的一条，
// 拼接长度超过 maxContextLength 时停止追加。
func BuildContext(results []*model.SearchResultItem, maxContextLength int) (string, []*model.RagSource, int) {
	if maxContextLength <= 0 {
		maxContextLength = 4000
	}

	best := make(map[string]*model.SearchResultItem)
	order := make([]string, 0, len(results))
	for _, item := range results {
		key := fmt.Sprintf("%s_%s", item.DocumentID, item.ChunkID)
		existing, ok := best[key]
		if !ok {
			best[key] = item
			order = append(order, key)
			continue
		}
		if item.Score > existing.Score {
			best[key] = item
		}
	}

	var builder strings.Builder
	sources := make([]*model.RagSource, 0, len(order))
	seenDocs := make(map[string]struct{})

	for _, key := range order {
		item := best[key]

		block := fmt.Sprintf("[Source %d] %s\n%s\n\n", len(sources)+1, item.DocumentTitle, item.Content)
		if builder.Len() > 0 && builder.Len()+len(block) > maxContextLength {
			break
		}

		builder.WriteString(block)
		sources = append(sources, &model.RagSource{
			Index:         len(sources) + 1,
			DocumentID:    item.DocumentID,
			DocumentTitle: item.DocumentTitle,
			ChunkID:       item.ChunkID,
			Content:       item.Content,
			Score:         item.Score,
		})
		seenDocs[item.DocumentID] = struct{}{}
	}

	return strings.TrimRight(builder.String(), "\n"), sources, len(seenDocs)
}
