package rag

import (
	"github.com/kyanome/rag-backend/constant"
	"github.com/kyanome/rag-backend/model"
)

// 置信度各维度权重
const (
	weightSearchRelevance   = 0.35
	weightContextCoverage   = 0.30
	weightAnswerCoherence   = 0.20
	weightSourceReliability = 0.15

	// 覆盖度按 5 条结果拉满
	coverageFullResults = 5

	multiDocumentBonus = 1.1
	directMatchBonus   = 1.2
)

// ConfidenceInput 置信度评分的四个维度，均为 0~1
type ConfidenceInput struct {
	SearchRelevance   float64
	ContextCoverage   float64
	AnswerCoherence   float64
	SourceReliability float64
}

// CalculateConfidence 加权合成总分并裁剪到 0~1
func CalculateConfidence(in ConfidenceInput) float64 {
	score := in.SearchRelevance*weightSearchRelevance +
		in.ContextCoverage*weightContextCoverage +
		in.AnswerCoherence*weightAnswerCoherence +
		in.SourceReliability*weightSourceReliability
	return clamp01(score)
}

// ConfidenceLevelOf 总分映射到等级
func ConfidenceLevelOf(score float64) constant.ConfidenceLevel {
	switch {
	case score >= 0.85:
		return constant.ConfidenceLevelHigh
	case score >= 0.65:
		return constant.ConfidenceLevelMedium
	case score >= 0.45:
		return constant.ConfidenceLevelLow
	default:
		return constant.ConfidenceLevelVeryLow
	}
}

// ConfidenceFromResults 由检索结果推导相关性和覆盖度。
// 相关性取最高分，两路直接命中加 20%；覆盖度按结果数对 5 取满，多文档命中加 10%。
func ConfidenceFromResults(results []*model.SearchResultItem, uniqueDocuments int) (relevance, coverage float64) {
	if len(results) == 0 {
		return 0, 0
	}

	var maxScore float64
	directMatch := false
	for _, item := range results {
		if item.Score > maxScore {
			maxScore = item.Score
		}
		if item.MatchType == string(constant.MatchTypeBoth) {
			directMatch = true
		}
	}

	relevance = clamp01(maxScore)
	if directMatch {
		relevance = clamp01(relevance * directMatchBonus)
	}

	coverage = float64(len(results)) / coverageFullResults
	if coverage > 1 {
		coverage = 1
	}
	if uniqueDocuments > 1 {
		coverage = clamp01(coverage * multiDocumentBonus)
	}

	return relevance, coverage
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
