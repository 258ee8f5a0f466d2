package rag

import (
	"testing"

	"github.com/kyanome/rag-backend/constant"
	"github.com/kyanome/rag-backend/model"

	"github.com/stretchr/testify/assert"
)

func TestCalculateConfidence(t *testing.T) {
	// 四个维度全满时总分为 1
	score := CalculateConfidence(ConfidenceInput{
		SearchRelevance:   1,
		ContextCoverage:   1,
		AnswerCoherence:   1,
		SourceReliability: 1,
	})
	assert.InDelta(t, 1.0, score, 1e-9)

	// 全零时总分为 0
	score = CalculateConfidence(ConfidenceInput{})
	assert.Equal(t, 0.0, score)

	// 加权求和：0.8*0.35 + 0.6*0.30 + 0.5*0.20 + 0.4*0.15
	score = CalculateConfidence(ConfidenceInput{
		SearchRelevance:   0.8,
		ContextCoverage:   0.6,
		AnswerCoherence:   0.5,
		SourceReliability: 0.4,
	})
	assert.InDelta(t, 0.62, score, 1e-9)
}

func TestConfidenceLevelOf(t *testing.T) {
	assert.Equal(t, constant.ConfidenceLevelHigh, ConfidenceLevelOf(0.9))
	assert.Equal(t, constant.ConfidenceLevelHigh, ConfidenceLevelOf(0.85))
	assert.Equal(t, constant.ConfidenceLevelMedium, ConfidenceLevelOf(0.84))
	assert.Equal(t, constant.ConfidenceLevelMedium, ConfidenceLevelOf(0.65))
	assert.Equal(t, constant.ConfidenceLevelLow, ConfidenceLevelOf(0.64))
	assert.Equal(t, constant.ConfidenceLevelLow, ConfidenceLevelOf(0.45))
	assert.Equal(t, constant.ConfidenceLevelVeryLow, ConfidenceLevelOf(0.44))
	assert.Equal(t, constant.ConfidenceLevelVeryLow, ConfidenceLevelOf(0))
}

func TestConfidenceFromResults(t *testing.T) {
	// 无结果时全为 0
	relevance, coverage := ConfidenceFromResults(nil, 0)
	assert.Equal(t, 0.0, relevance)
	assert.Equal(t, 0.0, coverage)

	// 单文档单结果：相关性取最高分，覆盖度为 1/5，无加成
	results := []*model.SearchResultItem{
		{DocumentID: "d1", Score: 0.8, MatchType: string(constant.MatchTypeVector)},
	}
	relevance, coverage = ConfidenceFromResults(results, 1)
	assert.InDelta(t, 0.8, relevance, 1e-9)
	assert.InDelta(t, 0.2, coverage, 1e-9)

	// 相关性取最高分而不是平均分
	results = []*model.SearchResultItem{
		{DocumentID: "d1", Score: 0.9, MatchType: string(constant.MatchTypeVector)},
		{DocumentID: "d1", Score: 0.5, MatchType: string(constant.MatchTypeVector)},
		{DocumentID: "d1", Score: 0.4, MatchType: string(constant.MatchTypeVector)},
	}
	relevance, coverage = ConfidenceFromResults(results, 1)
	assert.InDelta(t, 0.9, relevance, 1e-9)
	assert.InDelta(t, 0.6, coverage, 1e-9)

	// 多文档且含 both 命中：相关性乘 1.2，覆盖度乘 1.1
	results = []*model.SearchResultItem{
		{DocumentID: "d1", Score: 0.7, MatchType: string(constant.MatchTypeBoth)},
		{DocumentID: "d2", Score: 0.6, MatchType: string(constant.MatchTypeKeyword)},
	}
	relevance, coverage = ConfidenceFromResults(results, 2)
	assert.InDelta(t, 0.7*1.2, relevance, 1e-9)
	assert.InDelta(t, 0.4*1.1, coverage, 1e-9)

	// 相关性、覆盖度都封顶为 1
	many := make([]*model.SearchResultItem, 10)
	for i := range many {
		many[i] = &model.SearchResultItem{DocumentID: "d1", Score: 1, MatchType: string(constant.MatchTypeBoth)}
	}
	relevance, coverage = ConfidenceFromResults(many, 3)
	assert.Equal(t, 1.0, relevance)
	assert.Equal(t, 1.0, coverage)
}

func TestConfidenceScoreShape(t *testing.T) {
	// 最高分 0.9、三条结果、单文档：0.9*0.35 + 0.6*0.30 + 1*0.20 + 1*0.15 = 0.845
	results := []*model.SearchResultItem{
		{DocumentID: "d1", Score: 0.9, MatchType: string(constant.MatchTypeVector)},
		{DocumentID: "d1", Score: 0.5, MatchType: string(constant.MatchTypeVector)},
		{DocumentID: "d1", Score: 0.4, MatchType: string(constant.MatchTypeVector)},
	}
	relevance, coverage := ConfidenceFromResults(results, 1)
	score := CalculateConfidence(ConfidenceInput{
		SearchRelevance:   relevance,
		ContextCoverage:   coverage,
		AnswerCoherence:   1,
		SourceReliability: 1,
	})
	assert.InDelta(t, 0.845, score, 1e-9)
	assert.Equal(t, constant.ConfidenceLevelMedium, ConfidenceLevelOf(score))
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, clamp01(-0.5))
	assert.Equal(t, 1.0, clamp01(1.5))
	assert.Equal(t, 0.3, clamp01(0.3))
}
