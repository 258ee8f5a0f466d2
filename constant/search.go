package constant

// =============================================
// 检索类型常量
// =============================================

// SearchType 检索类型
type SearchType string

const (
	// SearchTypeKeyword 关键词检索（全文检索）
	SearchTypeKeyword SearchType = "keyword"
	// SearchTypeVector 向量相似度检索
	SearchTypeVector SearchType = "vector"
	// SearchTypeHybrid 混合检索（关键词 + 向量）
	SearchTypeHybrid SearchType = "hybrid"
)

// String 返回检索类型的字符串值
func (s SearchType) String() string {
	return string(s)
}

// IsValid 检查检索类型是否有效
func (s SearchType) IsValid() bool {
	switch s {
	case SearchTypeKeyword, SearchTypeVector, SearchTypeHybrid:
		return true
	}
	return false
}

// =============================================
// 匹配类型常量
// =============================================

// MatchType 检索结果的匹配来源
type MatchType string

const (
	// MatchTypeKeyword 仅关键词命中
	MatchTypeKeyword MatchType = "keyword"
	// MatchTypeVector 仅向量命中
	MatchTypeVector MatchType = "vector"
	// MatchTypeBoth 关键词和向量均命中
	MatchTypeBoth MatchType = "both"
)

func (m MatchType) String() string {
	return string(m)
}

// =============================================
// 置信度等级常量
// =============================================

// ConfidenceLevel 置信度等级
type ConfidenceLevel string

const (
	ConfidenceLevelHigh    ConfidenceLevel = "high"
	ConfidenceLevelMedium  ConfidenceLevel = "medium"
	ConfidenceLevelLow     ConfidenceLevel = "low"
	ConfidenceLevelVeryLow ConfidenceLevel = "very_low"
)

func (c ConfidenceLevel) String() string {
	return string(c)
}

// 单条检索结果的置信度分档阈值
const (
	// ItemConfidenceHighThreshold score >= 0.85 为 high
	ItemConfidenceHighThreshold = 0.85
	// ItemConfidenceMediumThreshold score >= 0.7 为 medium
	ItemConfidenceMediumThreshold = 0.7
)

// ItemConfidenceLevel 根据单条结果分数返回置信度等级
func ItemConfidenceLevel(score float64) ConfidenceLevel {
	switch {
	case score >= ItemConfidenceHighThreshold:
		return ConfidenceLevelHigh
	case score >= ItemConfidenceMediumThreshold:
		return ConfidenceLevelMedium
	default:
		return ConfidenceLevelLow
	}
}
