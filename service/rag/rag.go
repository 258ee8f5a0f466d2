package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/kyanome/rag-backend/config"
	"github.com/kyanome/rag-backend/constant"
	"github.com/kyanome/rag-backend/model"
	"github.com/kyanome/rag-backend/pkg/clients/llm_model"
	"github.com/kyanome/rag-backend/pkg/clients/ollama"
	"github.com/kyanome/rag-backend/repository/factory"
	"github.com/kyanome/rag-backend/service/search"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
)

const (
	providerOllama = "ollama"

	defaultMaxResults       = 5
	defaultMaxContextLength = 4000

	noContextAnswer = "The provided documents do not contain enough information to answer this question."
)

type Service struct {
	repositoryFactory factory.Factory
	searchService     *search.Service
}

func NewService(repositoryFactory factory.Factory, searchService *search.Service) *Service {
	return &Service{
		repositoryFactory: repositoryFactory,
		searchService:     searchService,
	}
}

// Query RAG 问答：混合检索、拼装上下文、模型生成、置信度评分
func (s *Service) Query(ctx context.Context, userID, role string, req *model.RagQueryRequest) (*model.RagQueryResponse, *model.Error) {
	startTime := time.Now()

	prepared, modelErr := s.prepare(ctx, userID, role, req)
	if modelErr != nil {
		return nil, modelErr
	}

	if len(prepared.sources) == 0 {
		return s.noContextResponse(prepared, startTime), nil
	}

	answer, usage, err := s.generate(ctx, prepared)
	if err != nil {
		return nil, model.NewError(model.ErrorRagGenerationFailed, err)
	}

	resp := s.buildResponse(prepared, answer, startTime)
	resp.TokenUsage = usage
	return resp, nil
}

// QueryStream 流式 RAG 问答：先推送来源，再逐段推送生成内容，最后推送置信度
func (s *Service) QueryStream(ctx context.Context, userID, role string, req *model.RagQueryRequest, onEvent func(*model.RagStreamEvent) error) *model.Error {
	startTime := time.Now()

	prepared, modelErr := s.prepare(ctx, userID, role, req)
	if modelErr != nil {
		return modelErr
	}

	if prepared.includeCitations {
		if err := onEvent(&model.RagStreamEvent{Type: "sources", Sources: prepared.sources}); err != nil {
			return model.NewError(model.ErrorRagGenerationFailed, err)
		}
	}

	if len(prepared.sources) == 0 {
		resp := s.noContextResponse(prepared, startTime)
		if err := onEvent(&model.RagStreamEvent{Type: "content", Content: resp.Answer}); err != nil {
			return model.NewError(model.ErrorRagGenerationFailed, err)
		}
		return finishStream(onEvent, resp.Confidence)
	}

	onDelta := func(content string) error {
		return onEvent(&model.RagStreamEvent{Type: "content", Content: content})
	}

	var answer string
	var err error
	if s.provider() == providerOllama {
		answer, err = ollama.GetInstance().GenerateStream(ctx, constant.RagSystemPrompt, prepared.userPrompt, prepared.req.Temperature, onDelta)
	} else {
		answer, err = llm_model.GetInstance().PostChatCompletionsStream(ctx, prepared.messages(), prepared.req.Temperature, onDelta)
	}
	if err != nil {
		_ = onEvent(&model.RagStreamEvent{Type: "error", Error: model.ErrorMessages[model.ErrorRagGenerationFailed]})
		return model.NewError(model.ErrorRagGenerationFailed, err)
	}

	resp := s.buildResponse(prepared, answer, startTime)
	return finishStream(onEvent, resp.Confidence)
}

func finishStream(onEvent func(*model.RagStreamEvent) error, confidence *model.RagConfidence) *model.Error {
	if err := onEvent(&model.RagStreamEvent{Type: "done", Confidence: confidence}); err != nil {
		return model.NewError(model.ErrorRagGenerationFailed, err)
	}
	return nil
}

// preparedQuery 检索和拼装阶段的产物，生成阶段直接使用
type preparedQuery struct {
	queryID          string
	req              *model.RagQueryRequest
	contextText      string
	userPrompt       string
	sources          []*model.RagSource
	results          []*model.SearchResultItem
	uniqueDocuments  int
	includeCitations bool
}

func (p *preparedQuery) messages() []openai.ChatCompletionMessage {
	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: constant.RagSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: p.userPrompt},
	}
}

func (s *Service) prepare(ctx context.Context, userID, role string, req *model.RagQueryRequest) (*preparedQuery, *model.Error) {
	if modelErr := req.Validate(); modelErr != nil {
		return nil, modelErr
	}

	cfg := config.GetInstance()

	maxResults := cfg.GetIntOrDefault(config.RagMaxResults, defaultMaxResults)
	if req.MaxResults != nil {
		maxResults = *req.MaxResults
	}

	includeCitations := cfg.GetBoolOrDefault(config.RagIncludeCitations, true)
	if req.IncludeCitations != nil {
		includeCitations = *req.IncludeCitations
	}

	searchResp, modelErr := s.searchService.Search(ctx, userID, role, &model.SearchRequest{
		Query:       req.Question,
		SearchType:  string(constant.SearchTypeHybrid),
		Limit:       &maxResults,
		DocumentIDs: req.DocumentIDs,
	})
	if modelErr != nil {
		return nil, modelErr
	}

	maxContextLength := cfg.GetIntOrDefault(config.RagMaxContextLength, defaultMaxContextLength)
	contextText, sources, uniqueDocuments := BuildContext(searchResp.Results, maxContextLength)

	return &preparedQuery{
		queryID:          uuid.NewString(),
		req:              req,
		contextText:      contextText,
		userPrompt:       fmt.Sprintf(constant.RagUserPromptTemplate, contextText, req.Question),
		sources:          sources,
		results:          searchResp.Results,
		uniqueDocuments:  uniqueDocuments,
		includeCitations: includeCitations,
	}, nil
}

func (s *Service) generate(ctx context.Context, prepared *preparedQuery) (string, *model.RagTokenUsage, error) {
	if s.provider() == providerOllama {
		answer, err := ollama.GetInstance().Generate(ctx, constant.RagSystemPrompt, prepared.userPrompt, prepared.req.Temperature)
		return answer, nil, err
	}

	resp, err := llm_model.GetInstance().PostChatCompletionsNonStream(ctx, prepared.messages(), prepared.req.Temperature)
	if err != nil {
		return "", nil, err
	}
	if len(resp.Choices) == 0 {
		return "", nil, fmt.Errorf("chat completion response has no choices")
	}

	usage := &model.RagTokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	return resp.Choices[0].Message.Content, usage, nil
}

func (s *Service) provider() string {
	return config.GetInstance().GetStringOrDefault(config.ClientChatModelProvider, "openai")
}

func (s *Service) modelName() string {
	if s.provider() == providerOllama {
		return config.GetInstance().GetString(config.ClientOllamaModel)
	}
	return config.GetInstance().GetString(config.ClientChatModelModel)
}

func (s *Service) buildResponse(prepared *preparedQuery, answer string, startTime time.Time) *model.RagQueryResponse {
	relevance, coverage := ConfidenceFromResults(prepared.results, prepared.uniqueDocuments)

	// 连贯性和来源可靠性没有独立信号，固定取满分参与加权
	score := CalculateConfidence(ConfidenceInput{
		SearchRelevance:   relevance,
		ContextCoverage:   coverage,
		AnswerCoherence:   1,
		SourceReliability: 1,
	})

	resp := &model.RagQueryResponse{
		AnswerID:  uuid.NewString(),
		QueryID:   prepared.queryID,
		Answer:    answer,
		ModelName: s.modelName(),
		Confidence: &model.RagConfidence{
			Score: score,
			Level: string(ConfidenceLevelOf(score)),
			Breakdown: map[string]float64{
				"search_relevance":   relevance,
				"context_coverage":   coverage,
				"answer_coherence":   1,
				"source_reliability": 1,
			},
		},
		UniqueDocuments:  prepared.uniqueDocuments,
		ContextLength:    len(prepared.contextText),
		ProcessingTimeMs: time.Since(startTime).Milliseconds(),
	}

	if prepared.includeCitations {
		resp.Sources = prepared.sources
	}

	return resp
}

func (s *Service) noContextResponse(prepared *preparedQuery, startTime time.Time) *model.RagQueryResponse {
	log.Infof("rag query got no context, question length=%d", len(prepared.req.Question))

	resp := &model.RagQueryResponse{
		AnswerID: uuid.NewString(),
		QueryID:  prepared.queryID,
		Answer:   noContextAnswer,
		Confidence: &model.RagConfidence{
			Score: 0,
			Level: string(constant.ConfidenceLevelVeryLow),
		},
		ProcessingTimeMs: time.Since(startTime).Milliseconds(),
	}
	if prepared.includeCitations {
		resp.Sources = []*model.RagSource{}
	}
	return resp
}
